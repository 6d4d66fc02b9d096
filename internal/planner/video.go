package planner

import (
	"fmt"
	"strconv"

	"github.com/backmassage/reelmaster/internal/style"
)

// normalize scales to cover the canvas, center-crops and fixes SAR and fps.
func normalize() []Filter {
	w, h := strconv.Itoa(CanvasWidth), strconv.Itoa(CanvasHeight)
	return []Filter{
		filter("scale", pos(w), pos(h), kv("force_original_aspect_ratio", "increase")),
		filter("crop", pos(w), pos(h)),
		filter("setsar", pos("1")),
		filter("fps", pos(strconv.Itoa(FrameRate))),
	}
}

// primaryVideo speeds up input 0, normalizes it and drops the lead-in.
func primaryVideo() Chain {
	fs := []Filter{filter("setpts", pos("PTS/"+fmtNum(Speed)))}
	fs = append(fs, normalize()...)
	fs = append(fs,
		filter("trim", kv("start", fmtNum(LeadIn))),
		filter("setpts", pos("PTS-STARTPTS")),
	)
	return Chain{Inputs: []string{"0:v"}, Filters: fs, Outputs: []string{"v0"}}
}

// secondaryVideo normalizes input 1 without any speed change or trim.
func secondaryVideo() Chain {
	return Chain{Inputs: []string{"1:v"}, Filters: normalize(), Outputs: []string{"v1"}}
}

// crossfade blends the two normalized streams at offset.
func crossfade(effect string, offset float64) Chain {
	return Chain{
		Inputs: []string{"v0", "v1"},
		Filters: []Filter{
			filter("xfade",
				kv("transition", effect),
				kv("duration", fmtNum(XfadeDuration)),
				kv("offset", fmt2(offset)),
			),
			filter("format", pos(PixelFormat)),
		},
		Outputs: []string{"vm"},
	}
}

// overlay draws the title and, when enabled, burns in captions.
func overlay(job RenderJob, cfg style.Config) (Chain, error) {
	title, err := titleFilter(job, cfg)
	if err != nil {
		return Chain{}, err
	}
	fs := []Filter{title}
	if cfg.Captions.Enabled() {
		caps, err := captionFilter(job.Palette, cfg.Captions)
		if err != nil {
			return Chain{}, err
		}
		fs = append(fs, caps)
	}
	return Chain{Inputs: []string{"vm"}, Filters: fs, Outputs: []string{VideoOut}}, nil
}

func titleFilter(job RenderJob, cfg style.Config) (Filter, error) {
	fg, err := drawtextColor(job.Palette.Title)
	if err != nil {
		return Filter{}, fmt.Errorf("title color: %w", err)
	}
	border, err := drawtextColor(job.Palette.TitleBorder)
	if err != nil {
		return Filter{}, fmt.Errorf("title border color: %w", err)
	}

	var font Arg
	if job.Font.File != "" {
		font = kv("fontfile", pathValue(job.Font.File))
	} else {
		name := job.Font.Name
		if name == "" {
			name = style.DefaultFont.Name
		}
		font = kv("font", optionValue(name))
	}

	return filter("drawtext",
		font,
		kv("text", optionValue(cfg.Title)),
		kv("expansion", "none"),
		kv("fontcolor", fg),
		kv("fontsize", strconv.Itoa(cfg.TitleSize)),
		kv("borderw", strconv.Itoa(cfg.TitleBorder)),
		kv("bordercolor", border),
		kv("x", "(w-text_w)/2"),
		kv("y", strconv.Itoa(TitleY)),
		kv("alpha", "'"+AlphaExpr(cfg.Window.Start, cfg.Window.End)+"'"),
	), nil
}

func captionFilter(pal style.Palette, c style.Captions) (Filter, error) {
	primary, err := EncodeCaptionColor(pal.Caption)
	if err != nil {
		return Filter{}, fmt.Errorf("caption color: %w", err)
	}
	outline, err := EncodeCaptionColor(pal.CaptionBorder)
	if err != nil {
		return Filter{}, fmt.Errorf("caption outline color: %w", err)
	}
	forceStyle := fmt.Sprintf(
		"Fontsize=%d,PrimaryColour=%s,OutlineColour=%s,BorderStyle=1,Outline=%d,Shadow=0,Alignment=2,MarginV=%d",
		c.Size, primary, outline, c.Outline, c.MarginV)

	return filter("subtitles",
		pos(pathValue(c.File)),
		kv("force_style", "'"+forceStyle+"'"),
	), nil
}
