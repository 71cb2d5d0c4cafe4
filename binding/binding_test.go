package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"text":    "MAX",
		"design":  "lorbeer",
		"tiers":   3,
		"request": map[string]any{"width": 210.0},
	}
	got := Interpolate("${text}_${design}_${tiers} ${request.width} ${missing}", data)
	if want := "MAX_lorbeer_3 210 ${missing}"; got != want {
		t.Fatalf("插值结果不符: got %q want %q", got, want)
	}
	if got := Interpolate("${text}", nil); got != "${text}" {
		t.Fatalf("data 为空时应原样返回, got %q", got)
	}
	if got := Interpolate("${text.inner}", data); got != "${text.inner}" {
		t.Fatalf("无法下钻的路径应保留占位符, got %q", got)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"MAX_lorbeer_3":  "MAX_lorbeer_3",
		"ANNA MARIA_x_2": "ANNA_MARIA_x_2",
		"../../etc/pass": "_.._etc_pass",
		"Jürgen":         "Jürgen",
		"a/b\\c:d":       "a_b_c_d",
		"...":            "unnamed",
		"":               "unnamed",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestArtifactName(t *testing.T) {
	data := map[string]any{"text": "A B", "design": "star", "tiers": 2}
	if got := ArtifactName("${text}_${design}_${tiers}", data); got != "A_B_star_2" {
		t.Fatalf("ArtifactName = %q", got)
	}
	if got := ArtifactName("${text}/${nope}", data); got != "A_B___nope_" {
		t.Fatalf("ArtifactName = %q", got)
	}
}
