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

// Package services contains the orchestration logic of the application: the
// instruction compiler, the persona repository, the active persona slot and
// the edit session that ties uploads, dispatches and drafts together.
package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// ClauseSeparator joins the clauses of a compiled instruction.
const ClauseSeparator = "；"

const (
	styleNameClause   = "使用风格: "
	trailingDirective = "请按以上风格对当前视频做统一剪辑处理。"
)

var toneClauses = map[model.Tone]string{
	model.ToneRational: "整体语气偏理性、严谨的讲解风格",
	model.ToneHumorous: "整体语气偏幽默、弹幕式调侃风格",
	model.ToneRomantic: "整体语气偏抒情浪漫、温柔风格",
}

var styleNamePattern = regexp.MustCompile(`使用风格:\s*([^；\n]+)`)

// BuildInstruction compiles a style preset into the instruction text sent to
// the edit service. The output depends only on its arguments, so the same
// preset always produces byte-identical text.
//
// Clauses, in order: style name, tone, subtitle, cut, transition, overlay,
// BGM and the closing directive. An unknown tone contributes no clause.
func BuildInstruction(name string, preset model.StylePreset) string {
	parts := make([]string, 0, 8)
	parts = append(parts, styleNameClause+name)

	if tone, ok := toneClauses[preset.Tone]; ok {
		parts = append(parts, tone)
	}

	s := preset.Subtitle
	parts = append(parts, fmt.Sprintf("字幕: 字体%s, 大小%d, 颜色%s, 位置%s, 动画%s",
		s.FontFamily, s.FontSize, s.Color, s.Position, s.Animation))

	parts = append(parts, fmt.Sprintf("剪辑: 节奏%s, 跳剪%s, 视角运动%s",
		preset.Cut.Pace, onOff(preset.Cut.JumpCut), zoomPan(preset.Cut.ZoomPan)))

	parts = append(parts, fmt.Sprintf("转场: %s", preset.Transitions))

	var overlay strings.Builder
	overlay.WriteString("叠加: ")
	if preset.Overlay.Captions {
		overlay.WriteString("保留字幕")
	} else {
		overlay.WriteString("无字幕")
	}
	if preset.Overlay.Barrage {
		overlay.WriteString("，增加弹幕风格文案")
	}
	if preset.Overlay.Stickers {
		overlay.WriteString("，适当贴纸")
	}
	parts = append(parts, overlay.String())

	parts = append(parts, fmt.Sprintf("BGM: 氛围%s, 音量%d%%", preset.Bgm.Mood, int(math.Round(preset.Bgm.Volume*100))))
	parts = append(parts, trailingDirective)

	return strings.Join(parts, ClauseSeparator)
}

// BuildPresetInstruction compiles a catalog entry under its own name.
func BuildPresetInstruction(preset model.PresetPersona) string {
	return BuildInstruction(preset.Name, preset.StylePreset)
}

// StyleNameFromInstruction recovers the style name from the first clause of
// a compiled instruction. The boolean is false for free-text instructions.
func StyleNameFromInstruction(instruction string) (string, bool) {
	m := styleNamePattern.FindStringSubmatch(instruction)
	if len(m) < 2 {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

func onOff(v bool) string {
	if v {
		return "开启"
	}
	return "关闭"
}

func zoomPan(v bool) string {
	if v {
		return "适度运镜"
	}
	return "无运镜"
}
