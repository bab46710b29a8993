package config

import "testing"

func TestDenominationValues_Default(t *testing.T) {
	m := MachineConfig{Denominations: "1,2,5,10,20,50,100"}

	values, err := m.DenominationValues()
	if err != nil {
		t.Fatalf("DenominationValues failed: %v", err)
	}
	want := []int{1, 2, 5, 10, 20, 50, 100}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(values))
	}
	for i, v := range want {
		if values[i] != v {
			t.Errorf("values[%d] = %d, want %d", i, values[i], v)
		}
	}
}

func TestDenominationValues_TrimsWhitespace(t *testing.T) {
	m := MachineConfig{Denominations: " 5, 10 ,25 "}

	values, err := m.DenominationValues()
	if err != nil {
		t.Fatalf("DenominationValues failed: %v", err)
	}
	if len(values) != 3 || values[0] != 5 || values[1] != 10 || values[2] != 25 {
		t.Errorf("expected [5 10 25], got %v", values)
	}
}

func TestDenominationValues_Invalid(t *testing.T) {
	m := MachineConfig{Denominations: "1,abc,5"}
	if _, err := m.DenominationValues(); err == nil {
		t.Error("expected error for non-numeric value")
	}

	m = MachineConfig{Denominations: " , "}
	if _, err := m.DenominationValues(); err == nil {
		t.Error("expected error for empty list")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("expected default db type sqlite, got %s", cfg.Database.Type)
	}
	if cfg.Machine.MaxTransaction <= 0 {
		t.Errorf("expected positive max transaction, got %d", cfg.Machine.MaxTransaction)
	}
	if _, err := cfg.Machine.DenominationValues(); err != nil {
		t.Errorf("default denominations must parse: %v", err)
	}
}
