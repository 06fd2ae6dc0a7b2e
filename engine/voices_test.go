package engine

import "testing"

func TestVoicesTable(t *testing.T) {
	voices := Voices()
	if len(voices) == 0 {
		t.Fatal("voice table is empty")
	}
	if voices[0] != DefaultVoice {
		t.Errorf("default voice %q should lead the table, got %q", DefaultVoice, voices[0])
	}

	seen := map[string]bool{}
	for _, v := range voices {
		if seen[v] {
			t.Errorf("duplicate voice %q", v)
		}
		seen[v] = true
		if !ValidVoice(v) {
			t.Errorf("ValidVoice(%q) = false for listed voice", v)
		}
	}

	if ValidVoice("not_a_voice") {
		t.Error("ValidVoice accepted an unknown name")
	}

	// Mutating the returned slice must not corrupt the table.
	voices[0] = "mutated"
	if !ValidVoice(DefaultVoice) {
		t.Error("Voices() returned the internal slice")
	}
}

func TestLanguageFor(t *testing.T) {
	cases := []struct {
		voice string
		want  string
	}{
		{"af_bella", "en-us"},
		{"am_adam", "en-us"},
		{"bf_emma", "en-gb"},
		{"ef_dora", "es"},
		{"ff_siwis", "fr-fr"},
		{"hf_alpha", "hi"},
		{"im_nicola", "it"},
		{"jf_alpha", "ja"},
		{"pm_santa", "pt-br"},
		{"zf_xiaoxiao", "cmn"},
		{"", "en-us"},
		{"weird", "en-us"},
	}
	for _, tc := range cases {
		if got := LanguageFor(tc.voice); got != tc.want {
			t.Errorf("LanguageFor(%q) = %q, want %q", tc.voice, got, tc.want)
		}
	}
}
