package heatmap

import (
	"math"
	"testing"

	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
)

func TestResolveKnobs_Defaults(t *testing.T) {
	data := ResolveKnobs(KnobInput{}, ModeData)
	if data.Alpha != 0.6 {
		t.Errorf("alpha: got %f, want 0.6", data.Alpha)
	}
	if data.Blend != BlendNormal {
		t.Errorf("data blend: got %s, want normal", data.Blend)
	}
	if data.Ramp.Name != imaging.RampClassic {
		t.Errorf("ramp: got %s, want classic", data.Ramp.Name)
	}
	if data.ClipLowPercent != 0 || data.ClipHighPercent != 99 {
		t.Errorf("clip: got %f-%f, want 0-99", data.ClipLowPercent, data.ClipHighPercent)
	}
	if data.KernelRadiusPx != 40 || data.KernelSigmaPx != 12 {
		t.Errorf("kernel: got r=%d sigma=%f", data.KernelRadiusPx, data.KernelSigmaPx)
	}

	ai := ResolveKnobs(KnobInput{}, ModeAI)
	if ai.Blend != BlendAdditive {
		t.Errorf("ai blend: got %s, want additive", ai.Blend)
	}
}

func TestResolveKnobs_Clamps(t *testing.T) {
	k := ResolveKnobs(KnobInput{
		Alpha:           fptr(3),
		ClipLowPercent:  fptr(-5),
		ClipHighPercent: fptr(250),
		KernelRadiusPx:  fptr(0),
		KernelSigmaPx:   fptr(1000),
		BlendMode:       "ADDITIVE",
		Ramp:            "soft",
	}, ModeData)

	if k.Alpha != 1 {
		t.Errorf("alpha: got %f, want 1", k.Alpha)
	}
	if k.ClipLowPercent != 0 || k.ClipHighPercent != 100 {
		t.Errorf("clip: got %f-%f, want 0-100", k.ClipLowPercent, k.ClipHighPercent)
	}
	if k.KernelRadiusPx != 1 {
		t.Errorf("radius: got %d, want 1", k.KernelRadiusPx)
	}
	if k.KernelSigmaPx != 100 {
		t.Errorf("sigma: got %f, want 100", k.KernelSigmaPx)
	}
	if k.Blend != BlendAdditive {
		t.Errorf("blend: got %s, want additive", k.Blend)
	}
	if k.Ramp.Name != imaging.RampSoft {
		t.Errorf("ramp: got %s, want soft", k.Ramp.Name)
	}

	big := ResolveKnobs(KnobInput{KernelRadiusPx: fptr(10_000)}, ModeData)
	if big.KernelRadiusPx != 200 {
		t.Errorf("radius: got %d, want 200", big.KernelRadiusPx)
	}
}

func TestResolveKnobs_SwapsInvertedClip(t *testing.T) {
	k := ResolveKnobs(KnobInput{ClipLowPercent: fptr(90), ClipHighPercent: fptr(10)}, ModeData)
	if k.ClipLowPercent != 10 || k.ClipHighPercent != 90 {
		t.Errorf("clip: got %f-%f, want 10-90", k.ClipLowPercent, k.ClipHighPercent)
	}
}

func TestResolveKnobs_NonFiniteAndUnknown(t *testing.T) {
	k := ResolveKnobs(KnobInput{
		Alpha:          fptr(math.NaN()),
		KernelSigmaPx:  fptr(math.Inf(1)),
		KernelRadiusPx: fptr(math.Inf(-1)),
		BlendMode:      "multiply",
		Ramp:           "viridis",
	}, ModeAI)

	if k.Alpha != DefaultAlpha || k.KernelSigmaPx != DefaultKernelSigmaPx || k.KernelRadiusPx != DefaultKernelRadiusPx {
		t.Errorf("non-finite inputs should take defaults: %+v", k)
	}
	if k.Blend != BlendAdditive {
		t.Errorf("unknown blend in ai mode: got %s, want additive", k.Blend)
	}
	if k.Ramp.Name != imaging.RampClassic {
		t.Errorf("unknown ramp: got %s, want classic", k.Ramp.Name)
	}
}

func TestKnobs_BlurPx(t *testing.T) {
	k := ResolveKnobs(KnobInput{KernelSigmaPx: fptr(13)}, ModeData)
	if got := k.BlurPx(ModeData); got != 13 {
		t.Errorf("data blur: got %d, want 13", got)
	}
	if got := k.BlurPx(ModeAI); got != 7 {
		t.Errorf("ai blur: got %d, want 7", got)
	}

	zero := ResolveKnobs(KnobInput{KernelSigmaPx: fptr(0)}, ModeData)
	if zero.BlurPx(ModeData) != 0 {
		t.Error("zero sigma should disable blur")
	}
}
