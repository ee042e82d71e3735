package backend

import (
	"errors"
	"fmt"
	"testing"
)

func TestDeriveIdentity(t *testing.T) {
	id := DeriveIdentity("mybackup", 1)
	if got := id.LocalPart(); got != "mybackup001.cloudchain" {
		t.Fatalf("unexpected local part %q", got)
	}
	if got := id.Address(); got != "mybackup001.cloudchain@gmail.com" {
		t.Fatalf("unexpected address %q", got)
	}
	if got := DeriveIdentity("mybackup", 42).LocalPart(); got != "mybackup042.cloudchain" {
		t.Fatalf("expected zero-padded index, got %q", got)
	}
	if got := DeriveIdentity("mybackup", 123).LocalPart(); got != "mybackup123.cloudchain" {
		t.Fatalf("unexpected local part %q", got)
	}
}

func TestValidateFirstIdentity(t *testing.T) {
	id, err := ValidateFirstIdentity("mybackup001.cloudchain@gmail.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Base != "mybackup" || id.Index != 1 {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestValidateFirstIdentity_NormalizesCase(t *testing.T) {
	id, err := ValidateFirstIdentity("  MyBackup001.CloudChain@Gmail.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Base != "mybackup" {
		t.Fatalf("expected lowercased base, got %q", id.Base)
	}
}

func TestValidateFirstIdentity_Rejections(t *testing.T) {
	cases := []string{
		"mybackup002.cloudchain@gmail.com", // index other than 001
		"mybackup001.cloudchain@outlook.com",
		"mybackup001@gmail.com",            // missing suffix
		"mybackup01.cloudchain@gmail.com", // index narrower than three digits
		"001.cloudchain@gmail.com", // empty base
		"mybackup001.cloudchain",   // no domain
		"",
	}
	for _, email := range cases {
		if _, err := ValidateFirstIdentity(email); !errors.Is(err, ErrInvalidFirstIdentity) {
			t.Errorf("ValidateFirstIdentity(%q) = %v, want ErrInvalidFirstIdentity", email, err)
		}
	}
}

func TestRequiredNextIdentity(t *testing.T) {
	next := RequiredNextIdentity("mybackup", 1)
	if got := next.LocalPart(); got != "mybackup002.cloudchain" {
		t.Fatalf("unexpected next identity %q", got)
	}
	if got := RequiredNextIdentity("mybackup", 9).LocalPart(); got != "mybackup010.cloudchain" {
		t.Fatalf("unexpected next identity %q", got)
	}
}

func TestDeriveIdentityRoundTrips(t *testing.T) {
	for n := 1; n <= 25; n++ {
		derived := DeriveIdentity("mybackup", n)
		if n == 1 {
			id, err := ValidateFirstIdentity(derived.Address())
			if err != nil {
				t.Fatalf("first identity did not round-trip: %v", err)
			}
			if id != derived {
				t.Fatalf("round trip changed identity: %+v != %+v", id, derived)
			}
			continue
		}
		if required := RequiredNextIdentity("mybackup", n-1); required != derived {
			t.Fatalf("index %d: required %+v, derived %+v", n, required, derived)
		}
		parsed, err := ParseLocalPart(derived.LocalPart())
		if err != nil {
			t.Fatalf("parse %q: %v", derived.LocalPart(), err)
		}
		if parsed != derived {
			t.Fatalf("parse round trip changed identity: %+v != %+v", parsed, derived)
		}
	}
}

func TestParseLocalPart_BaseEndingInDigits(t *testing.T) {
	// The lazy base match leaves exactly three digits for the index.
	local := fmt.Sprintf("backup2%03d.%s", 7, RequiredSuffix)
	id, err := ParseLocalPart(local)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Base != "backup2" || id.Index != 7 {
		t.Fatalf("unexpected identity %+v", id)
	}
}
