package detector

import (
	"testing"
)

func TestDetector_Detect(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantLang: "",
			wantOK:   false,
		},
		{
			name:     "whitespace",
			text:     "   \n",
			wantLang: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Your blood sugar level is slightly higher than the normal range.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "tamil text",
			text:     "உங்கள் இரத்த சர்க்கரை அளவு சாதாரண வரம்பை விட சற்று அதிகமாக உள்ளது.",
			wantLang: "Tamil",
			wantOK:   true,
		},
		{
			name:     "bengali text",
			text:     "আপনার রক্তে শর্করার মাত্রা স্বাভাবিকের চেয়ে সামান্য বেশি।",
			wantLang: "Bengali",
			wantOK:   true,
		},
		{
			name:     "gujarati text",
			text:     "તમારું બ્લડ સુગર સ્તર સામાન્ય કરતાં થોડું વધારે છે.",
			wantLang: "Gujarati",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Please drink more water and walk for thirty minutes every day.",
			wantCode: "EN",
			wantOK:   true,
		},
		{
			name:     "telugu text",
			text:     "దయచేసి ఎక్కువ నీరు త్రాగండి మరియు ప్రతిరోజూ ముప్పై నిమిషాలు నడవండి.",
			wantCode: "TE",
			wantOK:   true,
		},
		{
			name:     "punjabi text",
			text:     "ਕਿਰਪਾ ਕਰਕੇ ਜ਼ਿਆਦਾ ਪਾਣੀ ਪੀਓ ਅਤੇ ਹਰ ਰੋਜ਼ ਤੀਹ ਮਿੰਟ ਤੁਰੋ।",
			wantCode: "PA",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_Supports(t *testing.T) {
	d := New()

	for _, code := range []string{"en", "hi", "BN", "ta", "ur", "pa"} {
		if !d.Supports(code) {
			t.Errorf("expected %q to be supported", code)
		}
	}
	for _, code := range []string{"kn", "ml", "or", "as", ""} {
		if d.Supports(code) {
			t.Errorf("expected %q to be unsupported", code)
		}
	}
}
