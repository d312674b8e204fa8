package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/peer-support-platform/internal/api"
	"github.com/hackgods/peer-support-platform/internal/config"
	"github.com/hackgods/peer-support-platform/internal/random"
)

type SimConfig struct {
	APIBaseURL      string
	Duration        time.Duration
	Workers         int
	BookingRatio    float64
	ChatRatio       float64
	AnalyticsRatio  float64
	MessagesPerChat int
}

// prompts exercise each reply category; generated phrases mostly land in the
// default pool.
var prompts = []string{
	"hello there",
	"I've been so anxious about everything",
	"I feel sad and kind of hopeless",
	"work pressure is overwhelming me",
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Mount     OperationMetrics
	Select    OperationMetrics
	Confirm   OperationMetrics
	Chat      OperationMetrics
	Analytics OperationMetrics
	Unmount   OperationMetrics
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	metrics Metrics
	rooms   sync.Map // confirmed room ids, to spot duplicates
	dupes   int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: base=%s duration=%s workers=%d booking=%.2f chat=%.2f analytics=%.2f",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.ChatRatio, cfg.AnalyticsRatio)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:      getEnv("SIM_API_BASE_URL", "http://localhost:"+baseCfg.HTTPPort),
		Duration:        getDuration("SIM_DURATION", 30*time.Second),
		Workers:         getInt("SIM_WORKERS", 10),
		BookingRatio:    getFloat("SIM_BOOKING_RATIO", 0.5),
		ChatRatio:       getFloat("SIM_CHAT_RATIO", 0.3),
		AnalyticsRatio:  getFloat("SIM_ANALYTICS_RATIO", 0.2),
		MessagesPerChat: getInt("SIM_MESSAGES_PER_CHAT", 3),
	}

	total := cfg.BookingRatio + cfg.ChatRatio + cfg.AnalyticsRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ChatRatio /= total
		cfg.AnalyticsRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.MessagesPerChat < 0 {
		return fmt.Errorf("SIM_MESSAGES_PER_CHAT must be >= 0")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	faker := random.Seeded(uint64(time.Now().UnixNano()) + uint64(workerID))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := faker.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, faker)
			case r < s.config.BookingRatio+s.config.ChatRatio:
				s.doChat(ctx, faker)
			default:
				s.doAnalytics(ctx)
			}
		}
	}
}

// doBooking walks one wizard from mount to confirmation.
func (s *Simulator) doBooking(ctx context.Context, faker *gofakeit.Faker) {
	var state api.BookingStateResponse
	if !s.call(ctx, &s.metrics.Mount, http.MethodPost, "/booking/sessions", nil, http.StatusCreated, &state) {
		return
	}
	base := "/booking/sessions/" + state.SessionID.String()
	defer s.call(context.Background(), &s.metrics.Unmount, http.MethodDelete, base, nil, http.StatusNoContent, nil)

	if len(state.Dates) == 0 {
		return
	}
	date := random.Pick(faker, state.Dates)
	if !s.call(ctx, &s.metrics.Select, http.MethodPost, base+"/date", api.SelectDateRequest{DateID: date.ID}, http.StatusOK, nil) {
		return
	}

	var slots api.SlotsResponse
	if !s.call(ctx, &s.metrics.Select, http.MethodGet, base+"/slots", nil, http.StatusOK, &slots) || len(slots.Slots) == 0 {
		return
	}
	slot := random.Pick(faker, slots.Slots)
	if !s.call(ctx, &s.metrics.Select, http.MethodPost, base+"/slot", api.SelectSlotRequest{SlotID: slot.ID}, http.StatusOK, nil) {
		return
	}

	var conf api.ConfirmationResponse
	if !s.call(ctx, &s.metrics.Confirm, http.MethodPost, base+"/confirm", nil, http.StatusOK, &conf) {
		return
	}
	if _, loaded := s.rooms.LoadOrStore(conf.RoomID, struct{}{}); loaded {
		atomic.AddInt64(&s.dupes, 1)
	}
}

func (s *Simulator) doChat(ctx context.Context, faker *gofakeit.Faker) {
	var chat api.ChatSessionResponse
	if !s.call(ctx, &s.metrics.Mount, http.MethodPost, "/chat/sessions", nil, http.StatusCreated, &chat) {
		return
	}
	base := "/chat/sessions/" + chat.SessionID.String()
	defer s.call(context.Background(), &s.metrics.Unmount, http.MethodDelete, base, nil, http.StatusNoContent, nil)

	for i := 0; i < s.config.MessagesPerChat; i++ {
		text := faker.Phrase()
		if faker.Bool() {
			text = random.Pick(faker, prompts)
		}
		if !s.call(ctx, &s.metrics.Chat, http.MethodPost, base+"/messages", api.SendMessageRequest{Text: text}, http.StatusCreated, nil) {
			return
		}
	}
}

func (s *Simulator) doAnalytics(ctx context.Context) {
	var view api.AnalyticsViewResponse
	if !s.call(ctx, &s.metrics.Mount, http.MethodPost, "/analytics/views", nil, http.StatusCreated, &view) {
		return
	}
	base := "/analytics/views/" + view.SessionID.String()
	defer s.call(context.Background(), &s.metrics.Unmount, http.MethodDelete, base, nil, http.StatusNoContent, nil)

	s.call(ctx, &s.metrics.Analytics, http.MethodGet, base, nil, http.StatusOK, &view)
}

// call issues one request and records it against om. It reports whether the
// response carried the expected status; a 409 counts as a conflict.
func (s *Simulator) call(ctx context.Context, om *OperationMetrics, method, path string, body any, want int, out any) bool {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			om.Record(0, false, false)
			return false
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		om.Record(0, false, false)
		return false
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		// The run ending mid-request is not an API failure.
		if ctx.Err() == nil {
			om.Record(latency, false, false)
		}
		return false
	}
	defer resp.Body.Close()

	success := resp.StatusCode == want
	if success && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			success = false
		}
	}
	om.Record(latency, success, resp.StatusCode == http.StatusConflict)
	return success
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Mount", &s.metrics.Mount)
	printOperationReport("Select", &s.metrics.Select)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Chat", &s.metrics.Chat)
	printOperationReport("Analytics", &s.metrics.Analytics)
	printOperationReport("Unmount", &s.metrics.Unmount)

	fmt.Printf("Duplicate room ids: %d\n", atomic.LoadInt64(&s.dupes))
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func repeat(s string, n int) string {
	return strings.Repeat(s, n)
}
