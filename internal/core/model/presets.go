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

package model

// builtInPresets is the fixed preset catalog. Callers only ever see copies.
var builtInPresets = []PresetPersona{
	{
		ID:          "builtin_rational_lecturer",
		Name:        "理性讲师",
		Tag:         "理性",
		Icon:        "persona/teach.png",
		Description: "严谨讲解，信息密度高，字幕清晰稳重。",
		StylePreset: StylePreset{
			Tone:        ToneRational,
			Subtitle:    SubtitleStyle{FontFamily: "PingFang SC", FontSize: 28, Color: "#FFFFFF", Position: PositionBottom, Animation: AnimationNone},
			Cut:         CutStyle{Pace: PaceMedium, JumpCut: false, ZoomPan: false},
			Transitions: TransitionSmooth,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCinematic, Volume: 0.2},
		},
	},
	{
		ID:          "builtin_humorous_barrage",
		Name:        "搞笑弹幕",
		Tag:         "搞笑",
		Icon:        "persona/funny.png",
		Description: "快节奏剪辑，弹幕式文案与适当贴纸。",
		StylePreset: StylePreset{
			Tone:        ToneHumorous,
			Subtitle:    SubtitleStyle{FontFamily: "DIN Alternate", FontSize: 30, Color: "#FFD700", Position: PositionTop, Animation: AnimationPop},
			Cut:         CutStyle{Pace: PaceFast, JumpCut: true, ZoomPan: true},
			Transitions: TransitionFlashy,
			Overlay:     OverlayStyle{Captions: true, Stickers: true, Barrage: true},
			Bgm:         BgmStyle{Mood: MoodUpbeat, Volume: 0.5},
		},
	},
	{
		ID:          "builtin_romantic_lyrical",
		Name:        "抒情浪漫",
		Tag:         "温柔",
		Icon:        "persona/romantic.png",
		Description: "温柔抒情，慢节奏与柔和转场，淡雅字幕。",
		StylePreset: StylePreset{
			Tone:        ToneRomantic,
			Subtitle:    SubtitleStyle{FontFamily: "Hiragino Sans", FontSize: 26, Color: "#FFB6C1", Position: PositionBottom, Animation: AnimationSlide},
			Cut:         CutStyle{Pace: PaceSlow, JumpCut: false, ZoomPan: true},
			Transitions: TransitionSmooth,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCalm, Volume: 0.35},
		},
	},
	{
		ID:          "builtin_sports_highlight",
		Name:        "激情体育",
		Tag:         "运动",
		Icon:        "persona/gym.png",
		Description: "快速切片与节奏强烈的BGM，动感转场，强调关键瞬间。",
		StylePreset: StylePreset{
			Tone:        ToneHumorous,
			Subtitle:    SubtitleStyle{FontFamily: "DIN Alternate", FontSize: 28, Color: "#FFFFFF", Position: PositionBottom, Animation: AnimationBounce},
			Cut:         CutStyle{Pace: PaceFast, JumpCut: true, ZoomPan: true},
			Transitions: TransitionFlashy,
			Overlay:     OverlayStyle{Captions: true, Stickers: true, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodUpbeat, Volume: 0.55},
		},
	},
	{
		ID:          "builtin_tech_review",
		Name:        "科技测评",
		Tag:         "数码",
		Icon:        "persona/tech.png",
		Description: "干净字幕与稳重转场，特写与参数点列展示。",
		StylePreset: StylePreset{
			Tone:        ToneRational,
			Subtitle:    SubtitleStyle{FontFamily: "PingFang SC", FontSize: 26, Color: "#00E5FF", Position: PositionBottom, Animation: AnimationNone},
			Cut:         CutStyle{Pace: PaceMedium, JumpCut: true, ZoomPan: false},
			Transitions: TransitionSmooth,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCinematic, Volume: 0.25},
		},
	},
	{
		ID:          "builtin_cinematic_trailer",
		Name:        "电影预告",
		Tag:         "大片",
		Icon:        "persona/movie.png",
		Description: "电影化色调，强烈节奏，字幕居中大字号，戏剧化转场。",
		StylePreset: StylePreset{
			Tone:        ToneRational,
			Subtitle:    SubtitleStyle{FontFamily: "Hiragino Sans", FontSize: 32, Color: "#FFFFFF", Position: PositionCenter, Animation: AnimationSlide},
			Cut:         CutStyle{Pace: PaceFast, JumpCut: false, ZoomPan: true},
			Transitions: TransitionFlashy,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCinematic, Volume: 0.4},
		},
	},
	{
		ID:          "builtin_vlog_minimal",
		Name:        "极简Vlog",
		Tag:         "生活",
		Icon:        "persona/vlog.png",
		Description: "轻松舒缓，慢节奏，字幕小而简洁，过渡自然。",
		StylePreset: StylePreset{
			Tone:        ToneRomantic,
			Subtitle:    SubtitleStyle{FontFamily: "PingFang SC", FontSize: 22, Color: "#E0E0E0", Position: PositionBottom, Animation: AnimationNone},
			Cut:         CutStyle{Pace: PaceSlow, JumpCut: false, ZoomPan: false},
			Transitions: TransitionSmooth,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCalm, Volume: 0.25},
		},
	},
	{
		ID:          "builtin_gaming_montage",
		Name:        "游戏集锦",
		Tag:         "电竞",
		Icon:        "persona/game.png",
		Description: "快速剪辑+弹幕风格文案，夸张贴纸，BGM强鼓点。",
		StylePreset: StylePreset{
			Tone:        ToneHumorous,
			Subtitle:    SubtitleStyle{FontFamily: "DIN Alternate", FontSize: 28, Color: "#00FF88", Position: PositionTop, Animation: AnimationPop},
			Cut:         CutStyle{Pace: PaceFast, JumpCut: true, ZoomPan: true},
			Transitions: TransitionFlashy,
			Overlay:     OverlayStyle{Captions: true, Stickers: true, Barrage: true},
			Bgm:         BgmStyle{Mood: MoodUpbeat, Volume: 0.6},
		},
	},
	{
		ID:          "builtin_news_fastcut",
		Name:        "新闻快剪",
		Tag:         "资讯",
		Icon:        "persona/news.png",
		Description: "条理清晰、信息密度高，快节奏卡点，字幕规范对齐。",
		StylePreset: StylePreset{
			Tone:        ToneRational,
			Subtitle:    SubtitleStyle{FontFamily: "PingFang SC", FontSize: 24, Color: "#FFFFFF", Position: PositionBottom, Animation: AnimationNone},
			Cut:         CutStyle{Pace: PaceFast, JumpCut: true, ZoomPan: false},
			Transitions: TransitionSmooth,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCinematic, Volume: 0.2},
		},
	},
	{
		ID:          "builtin_travel_montage",
		Name:        "旅行记录",
		Tag:         "风光",
		Icon:        "persona/travel.png",
		Description: "自然过渡与轻快BGM，淡彩字幕，适度运镜。",
		StylePreset: StylePreset{
			Tone:        ToneRomantic,
			Subtitle:    SubtitleStyle{FontFamily: "Hiragino Sans", FontSize: 24, Color: "#FFFFFF", Position: PositionBottom, Animation: AnimationSlide},
			Cut:         CutStyle{Pace: PaceMedium, JumpCut: false, ZoomPan: true},
			Transitions: TransitionSmooth,
			Overlay:     OverlayStyle{Captions: true, Stickers: false, Barrage: false},
			Bgm:         BgmStyle{Mood: MoodCalm, Volume: 0.35},
		},
	},
}

// BuiltInPresets returns a copy of the preset catalog in display order.
func BuiltInPresets() []PresetPersona {
	out := make([]PresetPersona, len(builtInPresets))
	copy(out, builtInPresets)
	return out
}

// PresetByID looks a preset up by its stable id.
func PresetByID(id string) (PresetPersona, bool) {
	for _, p := range builtInPresets {
		if p.ID == id {
			return p, true
		}
	}
	return PresetPersona{}, false
}
