package engine

import "strings"

// DefaultVoice is used when no voice has been selected.
const DefaultVoice = "af_alloy"

// DefaultLanguage is the synthesis language fallback.
const DefaultLanguage = "en-us"

// voiceNames lists every voice the bundled model ships with. The prefix
// encodes accent and gender: "af" is American female, "bm" British male,
// and so on.
var voiceNames = []string{
	"af_alloy", "af_aoede", "af_bella", "af_heart", "af_jessica",
	"af_kore", "af_nicole", "af_nova", "af_river", "af_sarah", "af_sky",
	"am_adam", "am_echo", "am_eric", "am_fenrir", "am_liam",
	"am_michael", "am_onyx", "am_puck", "am_santa",
	"bf_alice", "bf_emma", "bf_isabella", "bf_lily",
	"bm_daniel", "bm_fable", "bm_george", "bm_lewis",
	"ef_dora", "em_alex", "em_santa",
	"ff_siwis",
	"hf_alpha", "hf_beta", "hm_omega", "hm_psi",
	"if_sara", "im_nicola",
	"jf_alpha", "jf_gongitsune", "jf_nezumi", "jf_tebukuro", "jm_kumo",
	"pf_dora", "pm_alex", "pm_santa",
	"zf_xiaobei", "zf_xiaoni", "zf_xiaoxiao", "zf_xiaoyi",
}

// prefixLanguages maps the leading letter of a voice name to the synthesis
// language tag the model expects.
var prefixLanguages = map[byte]string{
	'a': "en-us",
	'b': "en-gb",
	'e': "es",
	'f': "fr-fr",
	'h': "hi",
	'i': "it",
	'j': "ja",
	'p': "pt-br",
	'z': "cmn",
}

// Voices returns the supported voice names in a stable order. The returned
// slice is a copy.
func Voices() []string {
	out := make([]string, len(voiceNames))
	copy(out, voiceNames)
	return out
}

// ValidVoice reports whether name is a known voice.
func ValidVoice(name string) bool {
	for _, v := range voiceNames {
		if v == name {
			return true
		}
	}
	return false
}

// LanguageFor returns the synthesis language tag implied by a voice name,
// falling back to DefaultLanguage for unknown prefixes.
func LanguageFor(voice string) string {
	if voice == "" {
		return DefaultLanguage
	}
	if lang, ok := prefixLanguages[voice[0]]; ok && strings.Contains(voice, "_") {
		return lang
	}
	return DefaultLanguage
}
