package component

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	name     string
	priority float64
	log      *[]string
}

func (r *recorder) SetupPriority() float64 { return r.priority }
func (r *recorder) Setup()                 { *r.log = append(*r.log, "setup:"+r.name) }
func (r *recorder) DumpConfig()            { *r.log = append(*r.log, "dump:"+r.name) }

func TestSetupOrdersByPriority(t *testing.T) {
	var calls []string
	app := NewApplication()
	app.Register("display", &recorder{"display", PriorityDefault, &calls})
	app.Register("late", &recorder{"late", PriorityLate, &calls})
	app.Register("power", &recorder{"power", PriorityHardware, &calls})
	app.Register("sensor", &recorder{"sensor", PriorityData, &calls})

	names := app.Setup()

	wantNames := []string{"power", "sensor", "display", "late"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("setup order (-want +got):\n%s", diff)
	}

	wantCalls := []string{
		"setup:power", "setup:sensor", "setup:display", "setup:late",
		"dump:power", "dump:sensor", "dump:display", "dump:late",
	}
	if diff := cmp.Diff(wantCalls, calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestSetupStableForEqualPriority(t *testing.T) {
	var calls []string
	app := NewApplication()
	app.Register("a", &recorder{"a", PriorityDefault, &calls})
	app.Register("b", &recorder{"b", PriorityDefault, &calls})
	app.Register("c", &recorder{"c", PriorityDefault, &calls})

	names := app.Setup()

	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("setup order (-want +got):\n%s", diff)
	}
}

func TestSetupRunsOnce(t *testing.T) {
	var calls []string
	app := NewApplication()
	app.Register("power", &recorder{"power", PriorityHardware, &calls})

	app.Setup()
	if names := app.Setup(); names != nil {
		t.Errorf("second Setup returned %v, want nil", names)
	}

	setups := 0
	for _, c := range calls {
		if c == "setup:power" {
			setups++
		}
	}
	if setups != 1 {
		t.Errorf("setup ran %d times, want 1", setups)
	}
}

func TestRegisterAfterSetupIgnored(t *testing.T) {
	var calls []string
	app := NewApplication()
	app.Setup()
	app.Register("late", &recorder{"late", PriorityLate, &calls})

	if app.Len() != 0 {
		t.Errorf("Len: got %d, want 0", app.Len())
	}
}

func TestHardwareTierBeforeDefault(t *testing.T) {
	if !(PriorityHardware > PriorityDefault) {
		t.Errorf("hardware tier %.1f must exceed default %.1f", PriorityHardware, PriorityDefault)
	}
}
