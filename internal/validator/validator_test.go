package validator

import (
	"strings"
	"testing"
)

const englishText = "Your haemoglobin is slightly below the normal range. Eat more leafy vegetables."

func TestIsValid_EmptyTargetLang(t *testing.T) {
	v := New()

	valid, err := v.IsValid("Some translated text", "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for empty targetLang")
	}
}

func TestIsValid_UnsupportedTargetLang(t *testing.T) {
	v := New()

	valid, err := v.IsValid(englishText, "kn")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for a language without a detection model")
	}
	if v.Supports("kn") {
		t.Error("expected kn to be unsupported")
	}
}

func TestIsValid_EmptyTranslation(t *testing.T) {
	v := New()

	for _, text := range []string{"", "   "} {
		valid, err := v.IsValid(text, "ta")
		if err == nil {
			t.Errorf("expected error for %q", text)
		}
		if valid {
			t.Errorf("expected valid=false for %q", text)
		}
	}
}

func TestIsValid_ShortText(t *testing.T) {
	v := New()

	valid, err := v.IsValid("Hi", "ta")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for short text (below threshold)")
	}
}

func TestIsValid_MatchingLanguage(t *testing.T) {
	v := New()

	tamil := "உங்கள் ஹீமோகுளோபின் சாதாரண அளவை விட சற்று குறைவாக உள்ளது. அதிக கீரைகளை சாப்பிடுங்கள்."
	valid, err := v.IsValid(tamil, "ta")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true when detecting Tamil as Tamil")
	}
}

func TestIsValid_UntranslatedText(t *testing.T) {
	v := New()

	valid, err := v.IsValid(englishText, "bn")
	if err == nil {
		t.Fatal("expected error for English text when Bengali was requested")
	}
	if valid {
		t.Error("expected valid=false")
	}
	if !strings.Contains(err.Error(), "expected bn but detected en") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
}

func TestIsValid_CaseInsensitiveTargetLang(t *testing.T) {
	v := New()

	valid, err := v.IsValid(englishText, "EN")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for case-insensitive targetLang")
	}
}
