// internal/storage/memory/memory_test.go
package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/apexsim/apexsim/internal/model"
)

func TestNew(t *testing.T) {
	b := New()

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.vehicles == nil {
		t.Error("vehicles map not initialized")
	}
	if b.Name() != "memory" {
		t.Errorf("expected name memory, got %s", b.Name())
	}
}

func TestInitAndClose(t *testing.T) {
	b := New()

	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestSaveVehicle_AssignsIDAndUpserts(t *testing.T) {
	b := New()

	v := &model.GarageVehicle{Name: "gt3", Mass: 1300}
	if err := b.SaveVehicle(v); err != nil {
		t.Fatalf("SaveVehicle failed: %v", err)
	}
	if v.ID == 0 {
		t.Error("expected an assigned ID")
	}

	update := &model.GarageVehicle{Name: "gt3", Mass: 1250}
	if err := b.SaveVehicle(update); err != nil {
		t.Fatalf("SaveVehicle update failed: %v", err)
	}
	if update.ID != v.ID {
		t.Errorf("expected update to keep ID %d, got %d", v.ID, update.ID)
	}

	got, ok, err := b.GetVehicle("gt3")
	if err != nil {
		t.Fatalf("GetVehicle failed: %v", err)
	}
	if !ok {
		t.Fatal("expected to find vehicle gt3")
	}
	if got.Mass != 1250 {
		t.Errorf("expected updated mass 1250, got %.0f", got.Mass)
	}
}

func TestGetVehicle_NotFound(t *testing.T) {
	b := New()

	_, ok, err := b.GetVehicle("missing")
	if err != nil {
		t.Fatalf("GetVehicle failed: %v", err)
	}
	if ok {
		t.Error("expected not to find vehicle missing")
	}
}

func TestGetVehicle_ReturnsCopy(t *testing.T) {
	b := New()
	b.SaveVehicle(&model.GarageVehicle{Name: "gt3", Mass: 1300})

	got, _, _ := b.GetVehicle("gt3")
	got.Mass = 1

	again, _, _ := b.GetVehicle("gt3")
	if again.Mass != 1300 {
		t.Errorf("expected stored mass unchanged at 1300, got %.0f", again.Mass)
	}
}

func TestListVehicles_Sorted(t *testing.T) {
	b := New()
	b.SaveVehicle(&model.GarageVehicle{Name: "mx5"})
	b.SaveVehicle(&model.GarageVehicle{Name: "formula"})
	b.SaveVehicle(&model.GarageVehicle{Name: "gt3"})

	names, err := b.ListVehicles()
	if err != nil {
		t.Fatalf("ListVehicles failed: %v", err)
	}
	want := []string{"formula", "gt3", "mx5"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected names[%d]=%s, got %s", i, want[i], names[i])
		}
	}
}

func TestRecentValidationRuns_NewestFirst(t *testing.T) {
	b := New()
	for i := 1; i <= 3; i++ {
		b.SaveValidationRun(&model.ValidationRun{VehicleName: fmt.Sprintf("run-%d", i)})
	}

	runs, err := b.RecentValidationRuns(2)
	if err != nil {
		t.Fatalf("RecentValidationRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].VehicleName != "run-3" || runs[1].VehicleName != "run-2" {
		t.Errorf("expected newest first, got %s then %s", runs[0].VehicleName, runs[1].VehicleName)
	}
}

func TestRecentValidationRuns_NoLimit(t *testing.T) {
	b := New()
	for i := 1; i <= 3; i++ {
		b.SaveValidationRun(&model.ValidationRun{})
	}

	runs, _ := b.RecentValidationRuns(0)
	if len(runs) != 3 {
		t.Errorf("expected all 3 runs for limit 0, got %d", len(runs))
	}
}

func TestSaveSweepRun_CopiesPoints(t *testing.T) {
	b := New()

	points := []model.SweepPoint{{Velocity: 10, Gear: 2}, {Velocity: 11, Gear: 2}}
	run := &model.SweepRun{VehicleName: "gt3", PointCount: 2, Points: points}
	if err := b.SaveSweepRun(run); err != nil {
		t.Fatalf("SaveSweepRun failed: %v", err)
	}

	points[0].Gear = 9

	runs, _ := b.RecentSweepRuns(1)
	if len(runs) != 1 {
		t.Fatalf("expected 1 sweep run, got %d", len(runs))
	}
	if runs[0].Points[0].Gear != 2 {
		t.Errorf("expected stored point untouched by caller mutation, got gear %d", runs[0].Points[0].Gear)
	}
}

func TestConcurrentAccess(t *testing.T) {
	b := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			b.SaveVehicle(&model.GarageVehicle{Name: fmt.Sprintf("car-%03d", n)})
		}(i)
		go func(n int) {
			defer wg.Done()
			b.SaveValidationRun(&model.ValidationRun{VehicleName: fmt.Sprintf("car-%03d", n)})
		}(i)
	}
	wg.Wait()

	names, _ := b.ListVehicles()
	if len(names) != 50 {
		t.Errorf("expected 50 vehicles, got %d", len(names))
	}
	runs, _ := b.RecentValidationRuns(0)
	if len(runs) != 50 {
		t.Errorf("expected 50 validation runs, got %d", len(runs))
	}
}
