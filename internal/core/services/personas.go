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

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// Defaults used when personas are created.
const (
	CustomTag                  = "自定义"
	CommunityDescription       = "来自社区的风格预设"
	DefaultSavedPersonaName    = "我的Persona"
	DefaultSavedDescription    = "从当前剪辑偏好生成"
	NewPersonaProgress         = 0.5
	DerivedPersonaProgress     = 0.8
	savedDescriptionRuneLength = 120
)

// NewUserPersona builds a persona from user input. Name and description are
// trimmed and must not be blank.
func NewUserPersona(name string, description string, imageURI string, now time.Time) (*model.Persona, error) {
	p := &model.Persona{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		ImageURI:    imageURI,
		Tag:         CustomTag,
		Progress:    NewPersonaProgress,
		CreatedAt:   model.Timestamp(now),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PersonaFromPreset turns a catalog preset into a user persona carrying the
// compiled instruction.
func PersonaFromPreset(presetID string, now time.Time) (*model.Persona, error) {
	preset, ok := model.PresetByID(presetID)
	if !ok {
		return nil, model.ValidationError("persona.from_preset", fmt.Sprintf("unknown preset %s", presetID))
	}
	return &model.Persona{
		ID:          uuid.NewString(),
		Name:        preset.Name,
		Description: CommunityDescription,
		ImageURI:    preset.Icon,
		Tag:         preset.Tag,
		Progress:    DerivedPersonaProgress,
		CreatedAt:   model.Timestamp(now),
		Instruction: BuildPresetInstruction(preset),
	}, nil
}

// PersonaFromInstruction saves an applied instruction as a persona. The name
// comes from the style clause and the description is the head of the
// instruction.
func PersonaFromInstruction(instruction string, now time.Time) *model.Persona {
	name, ok := StyleNameFromInstruction(instruction)
	if !ok {
		name = DefaultSavedPersonaName
	}
	description := DefaultSavedDescription
	if instruction != "" {
		description = truncateRunes(instruction, savedDescriptionRuneLength)
	}
	return &model.Persona{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Tag:         CustomTag,
		Progress:    DerivedPersonaProgress,
		CreatedAt:   model.Timestamp(now),
		Instruction: instruction,
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
