package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maheshnellore19-collab/AI-Trader/internal/config"
	"github.com/maheshnellore19-collab/AI-Trader/internal/strategy"
)

const defaultConfigPath = "internal/config/config.yaml"

type editor struct {
	reader *bufio.Reader
	out    io.Writer
	path   string
	cfg    *config.Config
}

func main() {
	ed := &editor{reader: bufio.NewReader(os.Stdin), out: os.Stdout, path: locateConfig()}
	if err := ed.load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	ed.loop()
}

func (ed *editor) loop() {
	for {
		fmt.Fprintln(ed.out, "\n=== Options Desk Control ===")
		fmt.Fprintln(ed.out, "1) Show configuration summary")
		fmt.Fprintln(ed.out, "2) Edit risk limits")
		fmt.Fprintln(ed.out, "3) Edit filter thresholds")
		fmt.Fprintln(ed.out, "4) Edit session and contract")
		fmt.Fprintln(ed.out, "5) Save config")
		fmt.Fprintln(ed.out, "6) Launch desk")
		fmt.Fprintln(ed.out, "7) Reload config from disk")
		fmt.Fprintln(ed.out, "0) Exit")
		fmt.Fprint(ed.out, "Select option: ")

		input, err := ed.reader.ReadString('\n')
		choice := strings.TrimSpace(input)
		if err != nil && choice == "" {
			return
		}

		switch choice {
		case "1":
			ed.printSummary()
		case "2":
			ed.editRisk()
		case "3":
			ed.editThresholds()
		case "4":
			ed.editSession()
		case "5":
			if err := ed.save(); err != nil {
				fmt.Fprintf(ed.out, "save failed: %v\n", err)
			} else {
				fmt.Fprintln(ed.out, "config saved")
			}
		case "6":
			ed.launchDesk()
		case "7":
			if err := ed.load(); err != nil {
				fmt.Fprintf(ed.out, "reload failed: %v\n", err)
			} else {
				fmt.Fprintln(ed.out, "config reloaded")
			}
		case "0":
			return
		default:
			fmt.Fprintln(ed.out, "unknown option")
		}
	}
}

func (ed *editor) printSummary() {
	cfg := ed.cfg
	fmt.Fprintln(ed.out, "\n--- Configuration Summary ---")
	fmt.Fprintf(ed.out, "Contract: %s%s, lot %d, strike step %d\n", cfg.Market.SymbolRoot, cfg.Market.Expiry, cfg.Market.LotSize, cfg.Market.StrikeStep)
	fmt.Fprintf(ed.out, "Session: entries from %s, square off %s (%s)\n", cfg.Market.EntryNotBefore, cfg.Market.SquareOffTime, cfg.Market.Timezone)
	fmt.Fprintf(ed.out, "Daily capital: %.2f | max day loss: %.2f | max trade risk: %.2f\n", cfg.Risk.DailyCapital, cfg.Risk.MaxDayLoss, cfg.Risk.MaxTradeRisk)
	fmt.Fprintf(ed.out, "Max open positions: %d | disable on VIX above %.2f\n", cfg.Risk.MaxOpenPositions, cfg.Risk.DisableOnVIXAbove)
	fmt.Fprintf(ed.out, "Strategy mode: %s\n", cfg.Strategy.Mode)
	fmt.Fprintf(ed.out, "LONG_CALL: %s\n", formatBundle(cfg.Strategy.Thresholds.LongCall))
	fmt.Fprintf(ed.out, "LONG_PUT:  %s\n", formatBundle(cfg.Strategy.Thresholds.LongPut))
	fmt.Fprintf(ed.out, "Feed: %s every %s\n", cfg.Feed.Provider, cfg.Feed.Interval())
}

func formatBundle(b strategy.Bundle) string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, b[k]))
	}
	return strings.Join(parts, " ")
}

func (ed *editor) editRisk() {
	fmt.Fprintln(ed.out, "\n--- Edit Risk Limits ---")
	r := &ed.cfg.Risk
	r.DailyCapital = ed.promptFloat("Daily capital", r.DailyCapital)
	r.MaxDayLoss = ed.promptFloat("Max day loss", r.MaxDayLoss)
	r.MaxTradeRisk = ed.promptFloat("Max trade risk", r.MaxTradeRisk)
	r.MaxOpenPositions = int(ed.promptFloat("Max open positions", float64(r.MaxOpenPositions)))
	r.DisableOnVIXAbove = ed.promptFloat("Disable entries when VIX above", r.DisableOnVIXAbove)
}

func (ed *editor) editThresholds() {
	fmt.Fprintln(ed.out, "\n--- Edit Filter Thresholds ---")
	ed.editBundle("LONG_CALL", ed.cfg.Strategy.Thresholds.LongCall, strategy.CallKeys)
	ed.editBundle("LONG_PUT", ed.cfg.Strategy.Thresholds.LongPut, strategy.PutKeys)
	fmt.Fprintf(ed.out, "Mode (filters / filters_diagnostic) [%s]: ", ed.cfg.Strategy.Mode)
	if line, _ := ed.reader.ReadString('\n'); strings.TrimSpace(line) != "" {
		ed.cfg.Strategy.Mode = strings.TrimSpace(line)
	}
}

func (ed *editor) editBundle(name string, b strategy.Bundle, keys []string) {
	for _, k := range keys {
		b[k] = ed.promptFloat(name+" "+k, b[k])
	}
}

func (ed *editor) editSession() {
	fmt.Fprintln(ed.out, "\n--- Edit Session / Contract ---")
	m := &ed.cfg.Market
	m.EntryNotBefore = ed.promptString("Entry not before (HH:MM)", m.EntryNotBefore)
	m.SquareOffTime = ed.promptString("Square off (HH:MM)", m.SquareOffTime)
	m.Timezone = ed.promptString("Timezone", m.Timezone)
	m.SymbolRoot = ed.promptString("Symbol root", m.SymbolRoot)
	m.LotSize = int(ed.promptFloat("Lot size", float64(m.LotSize)))
	m.StrikeStep = int(ed.promptFloat("Strike step", float64(m.StrikeStep)))
	if _, err := ed.cfg.Session(); err != nil {
		fmt.Fprintf(ed.out, "warning: %v\n", err)
	}
}

func (ed *editor) launchDesk() {
	fmt.Fprintln(ed.out, "Launching desk (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/desk", "run", "--config", ed.path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(ed.out, "failed to start desk: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Fprint(ed.out, "\nPress ENTER to stop the desk and return to menu...")
	_, _ = ed.reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func (ed *editor) promptFloat(label string, current float64) float64 {
	fmt.Fprintf(ed.out, "%s [%g]: ", label, current)
	line, _ := ed.reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Fprintf(ed.out, "invalid number, keeping %g\n", current)
		return current
	}
	return val
}

func (ed *editor) promptString(label, current string) string {
	fmt.Fprintf(ed.out, "%s [%s]: ", label, current)
	line, _ := ed.reader.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return current
	}
	return line
}

func (ed *editor) load() error {
	cfg, err := config.Load(ed.path)
	if err != nil {
		return err
	}
	ed.cfg = cfg
	return nil
}

func (ed *editor) save() error {
	if err := ed.cfg.Validate(); err != nil {
		return err
	}
	return config.Save(ed.path, ed.cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
