package game

import (
	"fmt"
	"log"
)

// Difficulty is one preset row from the difficulty table.
type Difficulty struct {
	Key             string
	Label           string
	MaxSteps        int
	MaxGainPoints   int
	MaxLosingPoints int
	HiringThreshold int
	ExtraPrompt     string
}

// Language is a supported narrative language.
type Language struct {
	Key   string
	Label string
}

// Settings is the immutable configuration for one game run. A new game
// requires a new Settings value.
type Settings struct {
	Language   string
	Difficulty Difficulty
}

const extraHardPrompt = "Choices should include 1 positive effect and 2 negative effects on hireability"

// Difficulties is the fixed preset table. The first entry is the fallback
// used when an unknown key is requested.
var Difficulties = []Difficulty{
	{Key: "easy", Label: "Easy", MaxSteps: 10, MaxGainPoints: 10, MaxLosingPoints: 5, HiringThreshold: 60},
	{Key: "medium", Label: "Medium", MaxSteps: 10, MaxGainPoints: 7, MaxLosingPoints: 5, HiringThreshold: 70},
	{Key: "hard", Label: "Hard", MaxSteps: 10, MaxGainPoints: 5, MaxLosingPoints: 7, HiringThreshold: 70, ExtraPrompt: extraHardPrompt},
	{Key: "ultraHard", Label: "Ultra Hard", MaxSteps: 10, MaxGainPoints: 3, MaxLosingPoints: 9, HiringThreshold: 62, ExtraPrompt: extraHardPrompt},
}

// Languages lists the narrative languages offered on the start screen. Only
// the generated narrative is localized, never the UI chrome.
var Languages = []Language{
	{Key: "english", Label: "English"},
	{Key: "spanish", Label: "Spanish"},
	{Key: "french", Label: "French"},
	{Key: "german", Label: "German"},
	{Key: "italian", Label: "Italian"},
	{Key: "portuguese", Label: "Portuguese"},
	{Key: "lithuanian", Label: "Lithuanian"},
	{Key: "polish", Label: "Polish"},
	{Key: "russian", Label: "Russian"},
}

// ResolveSettings looks up the requested difficulty preset and pairs it with
// the requested language. An unknown difficulty key falls back to the first
// preset; the fallback is logged, never silent. The language is an opaque
// token passed through to prompts and only has to be non-empty.
func ResolveSettings(difficultyKey, language string) (Settings, error) {
	if language == "" {
		return Settings{}, fmt.Errorf("%w: empty language", ErrConfiguration)
	}
	if len(Difficulties) == 0 {
		return Settings{}, fmt.Errorf("%w: no difficulty presets defined", ErrConfiguration)
	}
	for _, d := range Difficulties {
		if d.Key == difficultyKey {
			return Settings{Language: language, Difficulty: d}, nil
		}
	}
	log.Printf("unknown difficulty %q, falling back to %q", difficultyKey, Difficulties[0].Key)
	return Settings{Language: language, Difficulty: Difficulties[0]}, nil
}
