package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apexsim/apexsim/internal/config"
	"github.com/apexsim/apexsim/internal/dispatcher"
	"github.com/apexsim/apexsim/internal/garage"
	"github.com/apexsim/apexsim/internal/model"
	"github.com/apexsim/apexsim/internal/run"
	"github.com/apexsim/apexsim/internal/storage"
	"github.com/apexsim/apexsim/internal/sweep"
	"github.com/apexsim/apexsim/internal/track"
	"github.com/apexsim/apexsim/internal/util"
	"github.com/apexsim/apexsim/internal/worker"
	"github.com/apexsim/apexsim/pkg/vehicle"
)

// runValidate checks each vehicle file for physical plausibility, prints
// the diagnostics and records the result through the dispatcher.
func runValidate(args []string) error {
	if len(args) == 0 {
		fmt.Println("No vehicle files provided.")
		return nil
	}

	failed := 0
	for _, path := range args {
		entry, err := garage.Load(path)
		if err != nil {
			return err
		}
		registry.Add(entry)

		ok, diags := vehicle.Validate(entry.Config)
		fmt.Printf("%s (%s)\n", entry.Config.Name, entry.Path)
		if len(diags) == 0 {
			fmt.Println("  no findings")
		}
		for _, d := range diags {
			fmt.Printf("  %s\n", d)
		}
		if ok {
			fmt.Println("  PASS")
		} else {
			fmt.Println("  FAIL")
			failed++
		}

		validationRun := model.NewValidationRun(entry.Config.Name, ok, diags)
		_, err = eventDispatcher.Dispatch(dispatcher.Event{
			Topic:     worker.TopicValidationRun,
			Payload:   validationRun,
			Timestamp: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("recording validation result: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d vehicles failed validation", failed, len(args))
	}
	return nil
}

// runInspect prints the derived performance figures for one vehicle file.
func runInspect(args []string) error {
	if len(args) == 0 {
		fmt.Println("No vehicle file provided.")
		return nil
	}

	entry, err := garage.Load(args[0])
	if err != nil {
		return err
	}
	printVehicleFigures(entry.Config)
	return nil
}

// printVehicleFigures renders the derived performance summary plus the
// per-gear speed span table.
func printVehicleFigures(cfg *vehicle.Config) {
	pt := cfg.Powertrain

	fmt.Printf("%s\n", cfg.Name)
	fmt.Printf("  %-22s %.0f kg\n", "mass", cfg.Mass.Mass)
	fmt.Printf("  %-22s %d\n", "gears", cfg.GearCount())
	fmt.Printf("  %-22s %.2f\n", "final drive", pt.FinalDrive)
	fmt.Printf("  %-22s %.0f%%\n", "driveline efficiency", pt.Efficiency*100)
	fmt.Printf("  %-22s %.0f - %.0f\n", "rpm range", pt.MinRPM, pt.MaxRPM)
	fmt.Printf("  %-22s %d points\n", "torque curve", pt.Torque.Len())
	fmt.Printf("  %-22s %.0f kW\n", "peak power", pt.Torque.MaxPowerWatts()/1000)
	fmt.Printf("  %-22s %.4f hp/kg\n", "power to weight", cfg.PowerToWeight())
	fmt.Printf("  %-22s %s\n", "drag-limited speed", util.FormatSpeed(cfg.MaxTheoreticalSpeed()))

	// speed covered by each gear between idle and the rev limit
	if pt.FinalDrive > 0 && cfg.Tires.Radius > 0 {
		speedAt := func(rpm, ratio float64) float64 {
			return rpm * 2 * math.Pi / 60 * cfg.Tires.Radius / (ratio * pt.FinalDrive)
		}
		fmt.Println("  gear speed spans:")
		for i, ratio := range pt.GearRatios {
			if ratio <= 0 {
				continue
			}
			fmt.Printf("    %d: %s - %s\n", i+1,
				util.FormatSpeed(speedAt(pt.MinRPM, ratio)),
				util.FormatSpeed(speedAt(pt.MaxRPM, ratio)))
		}
	}
}

// runSweep characterizes one vehicle over the configured velocity range
// and reports where the powertrain peaks.
func runSweep(args []string) error {
	if len(args) == 0 {
		fmt.Println("No vehicle file provided.")
		return nil
	}

	entry, err := garage.Load(args[0])
	if err != nil {
		return err
	}
	registry.Add(entry)

	ok, diags := vehicle.Validate(entry.Config)
	if !ok {
		for _, d := range diags {
			fmt.Printf("  %s\n", d)
		}
		return fmt.Errorf("vehicle %q fails validation, fix the errors above first", entry.Config.Name)
	}

	if err := storageBackend.SaveVehicle(model.NewGarageVehicle(entry.Config)); err != nil {
		return fmt.Errorf("saving vehicle to garage: %w", err)
	}

	info := run.NewInfo(entry.Config.Name)
	runCtx.Set(info, entry.Config)

	engine, err := sweep.NewEngine(config.GetSweepConfig(), eventDispatcher, Logger)
	if err != nil {
		return fmt.Errorf("failed to create sweep engine: %w", err)
	}

	result, err := engine.Run(mainCtx, info, entry.Config)
	if err != nil {
		return err
	}

	var peakPower, peakForce model.SweepPoint
	for _, p := range result.Points {
		if p.PowerKW > peakPower.PowerKW {
			peakPower = p
		}
		if p.DriveForce > peakForce.DriveForce {
			peakForce = p
		}
	}

	fmt.Printf("Sweep %s\n", result.RunID)
	fmt.Printf("  %-22s %s - %s step %.2f m/s\n", "velocity range",
		util.FormatSpeed(result.VelocityStart), util.FormatSpeed(result.VelocityEnd), result.VelocityStep)
	fmt.Printf("  %-22s %d\n", "points", result.PointCount)
	fmt.Printf("  %-22s %.1f ms\n", "duration", result.DurationMs)
	fmt.Printf("  %-22s %.1f kW in gear %d at %s\n", "peak wheel power",
		peakPower.PowerKW, peakPower.Gear, util.FormatSpeed(peakPower.Velocity))
	fmt.Printf("  %-22s %.0f N in gear %d at %s\n", "peak drive force",
		peakForce.DriveForce, peakForce.Gear, util.FormatSpeed(peakForce.Velocity))
	return nil
}

// loadTrack reads either the waypoint JSON object format or a bare
// projected polyline array.
func loadTrack(path string) (*track.Track, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track file: %w", err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		centerline, err := track.ParsePolyline(string(raw))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return track.NewProjected(name, centerline)
	}
	return track.Load(path)
}

// runTrack prints centerline stats for a track file and, when a vehicle
// file is given, the corner speed limits its tires allow. A trailing
// "export" argument writes the projected centerline next to the track.
func runTrack(args []string) error {
	if len(args) == 0 {
		fmt.Println("No track file provided.")
		return nil
	}

	trackPath := args[0]
	vehiclePath := ""
	export := false
	for _, arg := range args[1:] {
		if strings.ToLower(arg) == "export" {
			export = true
		} else {
			vehiclePath = arg
		}
	}

	trk, err := loadTrack(trackPath)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", trk.Name)
	fmt.Printf("  %-22s %d\n", "vertices", len(trk.Points()))
	fmt.Printf("  %-22s %.3f km\n", "length", trk.Length()/1000)
	fmt.Printf("  %-22s %.1f m\n", "elevation gain", trk.ElevationGain())

	if vehiclePath != "" {
		entry, err := garage.Load(vehiclePath)
		if err != nil {
			return err
		}
		corner, ok := trk.SlowestCorner(entry.Config.Tires)
		if !ok {
			fmt.Println("  no corners detected")
		} else {
			fmt.Printf("  %-22s vertex %d, radius %.0f m, %s for %s\n", "slowest corner",
				corner.Index, corner.Radius, util.FormatSpeed(corner.Speed), entry.Config.Name)
		}
	}

	if export {
		line, err := track.EncodePolyline(trk.Centerline())
		if err != nil {
			return err
		}
		out := strings.TrimSuffix(trackPath, filepath.Ext(trackPath)) + ".centerline.json"
		if err := os.WriteFile(out, []byte(line), 0644); err != nil {
			return fmt.Errorf("failed to write centerline: %w", err)
		}
		fmt.Printf("  %-22s %s\n", "centerline written to", out)
	}
	return nil
}

// runGarage manages the vehicle store: "garage <dir>" imports a directory
// of vehicle files, "garage list" and "garage show <name>" query the store.
func runGarage(args []string) error {
	if len(args) == 0 {
		return garageList()
	}
	sub := strings.ToLower(args[0])
	if sub == "list" {
		return garageList()
	}
	if sub == "show" {
		if len(args) < 2 {
			fmt.Println("No vehicle name provided.")
			return nil
		}
		return garageShow(args[1])
	}
	return garageImport(args[0])
}

func garageImport(dir string) error {
	entries, err := garage.LoadDir(dir)
	if errors.Is(err, garage.ErrNoVehicles) {
		fmt.Printf("No vehicle files found in %s.\n", dir)
		return nil
	}
	if err != nil {
		Logger.Warn().Err(err).Msg("Some vehicle files failed to load")
	}

	for _, entry := range entries {
		registry.Add(entry)
		if err := storageBackend.SaveVehicle(model.NewGarageVehicle(entry.Config)); err != nil {
			return fmt.Errorf("saving %s: %w", entry.Config.Name, err)
		}
		fmt.Printf("  %-16s %4.0f kg  %d gears  %.4f hp/kg  %s\n",
			entry.Config.Name, entry.Config.Mass.Mass, entry.Config.GearCount(),
			entry.Config.PowerToWeight(), util.FormatSpeed(entry.Config.MaxTheoreticalSpeed()))
	}
	fmt.Printf("Imported %d vehicles from %s.\n", registry.Len(), dir)
	return nil
}

func garageList() error {
	names, err := storageBackend.ListVehicles()
	if err != nil {
		return fmt.Errorf("listing vehicles: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("The garage is empty.")
		return nil
	}
	fmt.Printf("%d vehicles in garage:\n", len(names))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func garageShow(name string) error {
	stored, found, err := storageBackend.GetVehicle(name)
	if err != nil {
		return fmt.Errorf("loading %s from garage: %w", name, err)
	}
	if !found {
		fmt.Printf("No vehicle named %q in the garage.\n", name)
		return nil
	}
	cfg, err := stored.Config()
	if err != nil {
		return fmt.Errorf("decoding stored vehicle %s: %w", name, err)
	}
	printVehicleFigures(cfg)
	return nil
}

// runRecent lists the latest sweep and validation runs from the results
// store.
func runRecent(args []string) error {
	limit := 5
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	sweeps, err := storageBackend.RecentSweepRuns(limit)
	if err != nil {
		return fmt.Errorf("listing sweep runs: %w", err)
	}
	if len(sweeps) == 0 {
		fmt.Println("No sweep runs recorded.")
	} else {
		fmt.Println("Sweep runs:")
		for _, r := range sweeps {
			fmt.Printf("  %-28s %-16s %4d points  %8.1f ms\n",
				r.RunID, r.VehicleName, r.PointCount, r.DurationMs)
		}
	}

	validations, err := storageBackend.RecentValidationRuns(limit)
	if err != nil {
		return fmt.Errorf("listing validation runs: %w", err)
	}
	if len(validations) == 0 {
		fmt.Println("No validation runs recorded.")
	} else {
		fmt.Println("Validation runs:")
		for _, v := range validations {
			status := "PASS"
			if !v.OK {
				status = "FAIL"
			}
			fmt.Printf("  %-16s %s  %d errors, %d warnings\n",
				v.VehicleName, status, v.ErrorCount, v.WarningCount)
		}
	}
	return nil
}

// runBackup dumps the results store to a file, when the backend supports
// it.
func runBackup(args []string) error {
	if len(args) == 0 {
		fmt.Println("No backup path provided.")
		return nil
	}

	dumper, ok := storageBackend.(storage.Dumper)
	if !ok {
		return fmt.Errorf("%s storage does not support file backups", storageBackend.Name())
	}
	if err := dumper.DumpTo(args[0]); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Printf("Backup written to %s\n", args[0])
	return nil
}

func printVersion() {
	fmt.Printf("%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
}

func printUsage() {
	fmt.Printf("Usage: %s <command> [args]\n\n", AppName)
	fmt.Println("Commands:")
	fmt.Println("  validate <vehicle.json>...          check vehicle files and record the results")
	fmt.Println("  inspect <vehicle.json>              print derived performance figures")
	fmt.Println("  sweep <vehicle.json>                run a velocity sweep over the configured range")
	fmt.Println("  track <track.json> [vehicle.json] [export]")
	fmt.Println("                                      print centerline stats and corner speeds")
	fmt.Println("  garage <dir|list|show <name>>       import a vehicle directory or query the store")
	fmt.Println("  recent [n]                          list the latest recorded runs")
	fmt.Println("  backup <file.db>                    dump the results store to a file")
	fmt.Println("  version                             print the version")
	fmt.Println("  help                                print this help")
}
