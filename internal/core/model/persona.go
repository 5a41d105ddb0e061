// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model holds the data types shared by the orchestrator: style
// presets, personas, the active persona slot, edit sessions and the wire
// types of the remote editing service.
package model

import (
	"strings"
	"time"
)

type Tone string

const (
	ToneRational Tone = "rational"
	ToneHumorous Tone = "humorous"
	ToneRomantic Tone = "romantic"
)

type SubtitlePosition string

const (
	PositionTop    SubtitlePosition = "top"
	PositionBottom SubtitlePosition = "bottom"
	PositionCenter SubtitlePosition = "center"
)

type SubtitleAnimation string

const (
	AnimationNone   SubtitleAnimation = "none"
	AnimationPop    SubtitleAnimation = "pop"
	AnimationSlide  SubtitleAnimation = "slide"
	AnimationBounce SubtitleAnimation = "bounce"
)

type CutPace string

const (
	PaceSlow   CutPace = "slow"
	PaceMedium CutPace = "medium"
	PaceFast   CutPace = "fast"
)

type BgmMood string

const (
	MoodCalm      BgmMood = "calm"
	MoodUpbeat    BgmMood = "upbeat"
	MoodCinematic BgmMood = "cinematic"
)

type Transition string

const (
	TransitionNone   Transition = "none"
	TransitionSmooth Transition = "smooth"
	TransitionFlashy Transition = "flashy"
)

type SubtitleStyle struct {
	FontFamily string            `json:"fontFamily"`
	FontSize   int               `json:"fontSize"`
	Color      string            `json:"color"`
	Position   SubtitlePosition  `json:"position"`
	Animation  SubtitleAnimation `json:"animation"`
}

type CutStyle struct {
	Pace    CutPace `json:"pace"`
	JumpCut bool    `json:"jumpCut"`
	ZoomPan bool    `json:"zoomPan"`
}

type BgmStyle struct {
	Mood   BgmMood `json:"mood"`
	Volume float64 `json:"volume"` // 0..1
}

type OverlayStyle struct {
	Captions bool `json:"captions"`
	Stickers bool `json:"stickers"`
	Barrage  bool `json:"barrage"`
}

// StylePreset is the structured editing style compiled into an instruction.
type StylePreset struct {
	Tone        Tone          `json:"tone"`
	Subtitle    SubtitleStyle `json:"subtitle"`
	Cut         CutStyle      `json:"cut"`
	Bgm         BgmStyle      `json:"bgm"`
	Overlay     OverlayStyle  `json:"overlay"`
	Transitions Transition    `json:"transitions"`
}

// PresetPersona is a read-only catalog entry.
type PresetPersona struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Tag         string      `json:"tag"`
	Icon        string      `json:"icon"`
	Description string      `json:"description"`
	StylePreset StylePreset `json:"stylePreset"`
}

// Persona is a user-created (or preset-derived) style profile stored in the
// persona repository.
type Persona struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURI    string  `json:"imageUri"`
	Tag         string  `json:"tag"`
	Progress    float64 `json:"progress"`
	CreatedAt   string  `json:"createdAt"`
	Instruction string  `json:"instruction,omitempty"`
}

// Validate checks the fields a user must supply when creating a persona.
func (p *Persona) Validate() error {
	if p == nil {
		return ValidationError("persona.validate", "persona is required")
	}
	if strings.TrimSpace(p.ID) == "" {
		return ValidationError("persona.validate", "persona id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return ValidationError("persona.validate", "please enter a persona name")
	}
	if strings.TrimSpace(p.Description) == "" {
		return ValidationError("persona.validate", "please enter a persona description")
	}
	if p.Progress < 0 || p.Progress > 1 {
		return ValidationError("persona.validate", "progress must be between 0 and 1")
	}
	return nil
}

// EffectiveInstruction is the instruction a user persona contributes when it
// becomes active: the stored instruction, else its description.
func (p *Persona) EffectiveInstruction() string {
	if p.Instruction != "" {
		return p.Instruction
	}
	return p.Description
}

// Timestamp formats t the way createdAt values are persisted.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

type PersonaSource string

const (
	SourceBuiltin PersonaSource = "builtin"
	SourceUser    PersonaSource = "user"
)

// ActivePersonaState is the instruction currently loaded for the next edit.
type ActivePersonaState struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Source      PersonaSource `json:"source"`
	Instruction string        `json:"instruction"`
}
