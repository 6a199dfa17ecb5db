// simulate is a load harness for the booking engine. It sets up fresh
// doctors through the HTTP API, then fires groups of concurrent booking
// requests at the same (doctor, date, hour) keys and verifies the core
// guarantee: exactly one request per key wins, every other contender gets
// the TIME_SLOT_UNAVAILABLE sentinel.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/booking"
	"github.com/clinicdesk/clinic-scheduling/internal/slotgrid"
)

type simConfig struct {
	baseURL    string
	doctors    int
	slots      int
	contenders int
}

type outcome struct {
	status  int
	latency time.Duration
}

type metrics struct {
	total     int64
	success   int64
	conflict  int64
	errored   int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(o outcome) {
	atomic.AddInt64(&m.total, 1)
	switch {
	case o.status == http.StatusCreated:
		atomic.AddInt64(&m.success, 1)
	case o.status == http.StatusConflict:
		atomic.AddInt64(&m.conflict, 1)
	default:
		atomic.AddInt64(&m.errored, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, o.latency)
	m.mu.Unlock()
}

func (m *metrics) stats() (avg, p50, p95, max time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	avg = sum / time.Duration(len(sorted))
	p50 = sorted[len(sorted)*50/100]
	p95 = sorted[min(len(sorted)*95/100, len(sorted)-1)]
	max = sorted[len(sorted)-1]
	return avg, p50, p95, max
}

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "simulate").Logger()

	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "url", "http://127.0.0.1:8080", "API base URL")
	flag.IntVar(&cfg.doctors, "doctors", 5, "doctors to set up")
	flag.IntVar(&cfg.slots, "slots", 6, "contested slots per doctor")
	flag.IntVar(&cfg.contenders, "contenders", 8, "concurrent bookings per slot")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	m := &metrics{}
	violations := 0

	for d := 0; d < cfg.doctors; d++ {
		doctorID := uuid.New()
		if err := setupDoctor(client, cfg.baseURL, doctorID); err != nil {
			log.Fatal().Err(err).Msg("doctor setup failed")
		}

		date := nextWeekday(slotgrid.Monday)
		targets := slotgrid.DefaultWindow.Enumerate()[:cfg.slots]

		for _, slot := range targets {
			winners := contest(client, cfg, doctorID, date, slot.Start, m)
			if winners != 1 {
				violations++
				log.Error().
					Str("doctor_id", doctorID.String()).
					Str("date", date.String()).
					Str("hour", slot.Start.String()).
					Int("winners", winners).
					Msg("uniqueness violation")
			}
		}
	}

	avg, p50, p95, maxLat := m.stats()
	log.Info().
		Int64("total", m.total).
		Int64("success", m.success).
		Int64("conflict", m.conflict).
		Int64("error", m.errored).
		Dur("avg", avg).
		Dur("p50", p50).
		Dur("p95", p95).
		Dur("max", maxLat).
		Int("violations", violations).
		Msg("simulation complete")

	if violations > 0 {
		os.Exit(1)
	}
}

// contest fires cfg.contenders concurrent bookings for one key and returns
// how many succeeded.
func contest(client *http.Client, cfg simConfig, doctorID uuid.UUID, date slotgrid.Date, hour slotgrid.TimeOfDay, m *metrics) int {
	var wg sync.WaitGroup
	var winners int64

	for i := 0; i < cfg.contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]any{
				"doctor_id":  doctorID.String(),
				"patient_id": uuid.New().String(),
				"date":       date.String(),
				"hour":       hour.String(),
				"reason":     "load test booking",
			})

			start := time.Now()
			resp, err := client.Post(cfg.baseURL+"/bookings", "application/json", bytes.NewReader(body))
			latency := time.Since(start)
			if err != nil {
				m.record(outcome{status: 0, latency: latency})
				return
			}
			defer resp.Body.Close()

			var payload struct {
				Error string `json:"error"`
			}
			raw, _ := io.ReadAll(resp.Body)
			_ = json.Unmarshal(raw, &payload)

			status := resp.StatusCode
			if status == http.StatusConflict && payload.Error != booking.SentinelTimeSlotUnavailable {
				// a losing contender must see the exact sentinel
				status = 0
			}

			m.record(outcome{status: status, latency: latency})
			if status == http.StatusCreated {
				atomic.AddInt64(&winners, 1)
			}
		}()
	}

	wg.Wait()
	return int(winners)
}

// setupDoctor grants the doctor a full Monday template so every contested
// slot is genuinely offered.
func setupDoctor(client *http.Client, baseURL string, doctorID uuid.UUID) error {
	slots := make([]map[string]string, 0)
	for _, s := range slotgrid.DefaultWindow.Enumerate() {
		slots = append(slots, map[string]string{"start": s.Start.String()})
	}

	body, _ := json.Marshal(map[string]any{
		"doctor_id": doctorID.String(),
		"weekday":   string(slotgrid.Monday),
		"slots":     slots,
	})

	resp, err := client.Post(baseURL+"/availability/append", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("availability append returned %d: %s", resp.StatusCode, raw)
	}
	return nil
}

func nextWeekday(wd slotgrid.Weekday) slotgrid.Date {
	d := slotgrid.DateOf(time.Now()).AddDays(1)
	for d.Weekday() != wd {
		d = d.AddDays(1)
	}
	return d
}
