package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/appointment-system/internal/config"
	"github.com/clinicore/appointment-system/internal/db"
)

// The simulator hammers a single appointment slot with concurrent booking
// requests. Per round, exactly one request should come back 201 and every
// other one 409: the slot's uniqueness is enforced by the store, not by luck.

type SimConfig struct {
	APIBaseURL  string
	Rounds      int
	Workers     int
	PostgresDSN string
}

type RoundResult struct {
	Created   int
	Conflicts int
	Errors    int
	Latencies []time.Duration
}

type Simulator struct {
	config   SimConfig
	client   *http.Client
	token    string
	patients []int64
	doctors  []int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()
	if err := validateSimConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: rounds=%d workers=%d base=%s", cfg.Rounds, cfg.Workers, cfg.APIBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The simulator only loads ids up front; load goes through the API.
	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, 2)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	if err := sim.loadIDs(ctx, pgPool); err != nil {
		log.Fatalf("load ids: %v", err)
	}
	log.Printf("loaded: %d patients, %d doctors", len(sim.patients), len(sim.doctors))

	if err := sim.login(ctx, pgPool); err != nil {
		log.Fatalf("login: %v", err)
	}

	results := make([]RoundResult, 0, cfg.Rounds)
	for round := 0; round < cfg.Rounds; round++ {
		results = append(results, sim.runRound(round))
	}

	printReport(cfg, results)
}

func loadSimConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	return SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Rounds:      getInt("SIM_ROUNDS", 10),
		Workers:     getInt("SIM_WORKERS", 25),
		PostgresDSN: baseCfg.PostgresDSN,
	}
}

func validateSimConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 1 {
		return fmt.Errorf("SIM_WORKERS must be > 1")
	}
	if cfg.Rounds <= 0 {
		return fmt.Errorf("SIM_ROUNDS must be > 0")
	}
	return nil
}

func (s *Simulator) loadIDs(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx, `SELECT id FROM patients ORDER BY id LIMIT 200`)
	if err != nil {
		return fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		s.patients = append(s.patients, id)
	}

	rows, err = pool.Query(ctx, `SELECT id FROM doctors WHERE is_active ORDER BY id LIMIT 50`)
	if err != nil {
		return fmt.Errorf("load doctors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		s.doctors = append(s.doctors, id)
	}

	if len(s.patients) == 0 {
		return fmt.Errorf("no patients loaded (run cmd/seed first)")
	}
	if len(s.doctors) == 0 {
		return fmt.Errorf("no active doctors loaded (run cmd/seed first)")
	}
	return nil
}

// login authenticates as a seeded patient account. The seeder gives every
// account the same password.
func (s *Simulator) login(ctx context.Context, pool *pgxpool.Pool) error {
	var email string
	err := pool.QueryRow(ctx, `
		SELECT email FROM users WHERE role = 'Patient' AND is_active ORDER BY id LIMIT 1
	`).Scan(&email)
	if err != nil {
		return fmt.Errorf("pick login account: %w", err)
	}

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": getEnv("SIM_PASSWORD", "password123"),
	})

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login returned %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if envelope.Data.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	s.token = envelope.Data.Token
	return nil
}

// runRound picks one fresh slot and fires every worker at it simultaneously.
func (s *Simulator) runRound(round int) RoundResult {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(round)))

	doctorID := s.doctors[rng.Intn(len(s.doctors))]
	date := time.Now().UTC().AddDate(0, 0, 7+round).Format("2006-01-02")
	timeOfDay := fmt.Sprintf("%02d:%02d", 9+rng.Intn(8), 15*rng.Intn(4))

	result := RoundResult{Latencies: make([]time.Duration, 0, s.config.Workers)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < s.config.Workers; i++ {
		patientID := s.patients[rng.Intn(len(s.patients))]
		wg.Add(1)
		go func(patientID int64) {
			defer wg.Done()
			<-start

			begin := time.Now()
			status := s.book(patientID, doctorID, date, timeOfDay)
			latency := time.Since(begin)

			mu.Lock()
			defer mu.Unlock()
			result.Latencies = append(result.Latencies, latency)
			switch status {
			case http.StatusCreated:
				result.Created++
			case http.StatusConflict:
				result.Conflicts++
			default:
				result.Errors++
			}
		}(patientID)
	}

	close(start)
	wg.Wait()

	log.Printf("round %d: doctor=%d %s %s created=%d conflicts=%d errors=%d",
		round, doctorID, date, timeOfDay, result.Created, result.Conflicts, result.Errors)
	return result
}

func (s *Simulator) book(patientID, doctorID int64, date, timeOfDay string) int {
	body, _ := json.Marshal(map[string]any{
		"patient_id":       patientID,
		"doctor_id":        doctorID,
		"appointment_date": date,
		"appointment_time": timeOfDay,
	})

	req, err := http.NewRequest("POST", s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func printReport(cfg SimConfig, results []RoundResult) {
	var created, conflicts, errors int
	var cleanRounds int
	var all []time.Duration

	for _, r := range results {
		created += r.Created
		conflicts += r.Conflicts
		errors += r.Errors
		all = append(all, r.Latencies...)
		if r.Created == 1 && r.Errors == 0 {
			cleanRounds++
		}
	}

	fmt.Println()
	fmt.Println("SLOT CONTENTION REPORT")
	fmt.Printf("Rounds: %d  Workers per round: %d\n", cfg.Rounds, cfg.Workers)
	fmt.Printf("Created: %d  Conflicts: %d  Errors: %d\n", created, conflicts, errors)
	fmt.Printf("Clean rounds (exactly one winner, no errors): %d/%d\n", cleanRounds, cfg.Rounds)

	if len(all) > 0 {
		sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
		var sum time.Duration
		for _, l := range all {
			sum += l
		}
		avg := sum / time.Duration(len(all))
		p95 := all[min(len(all)*95/100, len(all)-1)]
		fmt.Printf("Latency: avg=%s min=%s max=%s p95=%s\n",
			avg.Round(time.Millisecond), all[0].Round(time.Millisecond),
			all[len(all)-1].Round(time.Millisecond), p95.Round(time.Millisecond))
	}

	if cleanRounds != cfg.Rounds {
		fmt.Println("WARNING: some rounds had duplicate winners or errors")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
