package service

import (
	"errors"
	"strings"
	"testing"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
)

func TestComposePrompt(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		style string
		want  string
	}{
		{
			name:  "placeholder replaced",
			base:  "讲解时{{AI_STYLE}}，注意准确。",
			style: "多举生活例子",
			want:  "讲解时多举生活例子，注意准确。",
		},
		{
			name:  "placeholder case insensitive",
			base:  "讲解时{{ai_style}}。",
			style: "用口诀",
			want:  "讲解时用口诀。",
		},
		{
			name:  "placeholder replaced everywhere",
			base:  "{{AI_STYLE}}开头，{{AI_STYLE}}结尾",
			style: "X",
			want:  "X开头，X结尾",
		},
		{
			name:  "no placeholder appends after blank line",
			base:  "基础讲解提示词",
			style: "语气轻松",
			want:  "基础讲解提示词\n\n语气轻松",
		},
		{
			name:  "empty style keeps base",
			base:  "基础讲解提示词",
			style: "  ",
			want:  "基础讲解提示词",
		},
		{
			name:  "empty base returns style",
			base:  "",
			style: "语气轻松",
			want:  "语气轻松",
		},
		{
			name:  "excess newlines collapsed",
			base:  "第一段\n\n\n\n第二段",
			style: "",
			want:  "第一段\n\n第二段",
		},
		{
			name:  "whitespace trimmed",
			base:  "  提示词  \n",
			style: "",
			want:  "提示词",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposePrompt(tt.base, tt.style); got != tt.want {
				t.Errorf("ComposePrompt(%q, %q) = %q, want %q", tt.base, tt.style, got, tt.want)
			}
		})
	}
}

func TestComposePromptStyleWithDollarSigns(t *testing.T) {
	// 自定义风格里的 $ 不能被当作正则反向引用展开
	got := ComposePrompt("前缀{{AI_STYLE}}后缀", "费用是 $100")
	if !strings.Contains(got, "$100") {
		t.Fatalf("got %q, $ sequence mangled", got)
	}
}

func setupStyle(t *testing.T) *StyleService {
	t.Helper()
	db := newTestDB(t)
	return NewStyleService(repository.NewStylePresetRepository(db), repository.NewUserRepository(db))
}

func TestPresetCRUD(t *testing.T) {
	svc := setupStyle(t)

	preset, err := svc.CreatePreset(1, PresetRequest{Name: "标准讲解", Prompt: "请讲解{{AI_STYLE}}"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CreatePreset(1, PresetRequest{Name: "标准讲解", Prompt: "x"}); !errors.Is(err, util.ErrPresetNameTaken) {
		t.Fatalf("duplicate name: err = %v, want ErrPresetNameTaken", err)
	}

	updated, err := svc.UpdatePreset(preset.ID, PresetRequest{Name: "标准讲解v2", Prompt: "新提示词"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "标准讲解v2" || updated.Prompt != "新提示词" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.UpdatePreset(9999, PresetRequest{Name: "x", Prompt: "y"}); !errors.Is(err, util.ErrPresetNotFound) {
		t.Fatalf("missing preset: err = %v, want ErrPresetNotFound", err)
	}
}

func TestSetDefaultIsExclusive(t *testing.T) {
	svc := setupStyle(t)

	p1, err := svc.CreatePreset(1, PresetRequest{Name: "风格一", Prompt: "a"})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := svc.CreatePreset(1, PresetRequest{Name: "风格二", Prompt: "b"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SetDefault(p1.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetDefault(p2.ID); err != nil {
		t.Fatal(err)
	}

	presets, err := svc.ListPresets()
	if err != nil {
		t.Fatal(err)
	}
	defaults := 0
	for _, p := range presets {
		if p.IsDefault {
			defaults++
			if p.ID != p2.ID {
				t.Fatalf("default preset = %d, want %d", p.ID, p2.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("default count = %d, want exactly 1", defaults)
	}

	// 默认预设不可删除
	if err := svc.DeletePreset(p2.ID); err == nil {
		t.Fatal("deleting default preset should fail")
	}
	if err := svc.DeletePreset(p1.ID); err != nil {
		t.Fatalf("deleting non-default preset: %v", err)
	}
}

func TestResolvePromptForUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewStyleService(repository.NewStylePresetRepository(db), repository.NewUserRepository(db))

	def, err := svc.CreatePreset(1, PresetRequest{Name: "默认", Prompt: "默认提示{{AI_STYLE}}"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetDefault(def.ID); err != nil {
		t.Fatal(err)
	}
	other, err := svc.CreatePreset(1, PresetRequest{Name: "另一个", Prompt: "另一套提示"})
	if err != nil {
		t.Fatal(err)
	}

	// 未选预设走默认预设
	user := &model.User{AIStylePrompt: "幽默一点"}
	got, err := svc.ResolvePromptForUser(user)
	if err != nil {
		t.Fatal(err)
	}
	if got != "默认提示幽默一点" {
		t.Fatalf("default resolution = %q", got)
	}

	// 选中预设优先
	user.StylePresetID = &other.ID
	got, err = svc.ResolvePromptForUser(user)
	if err != nil {
		t.Fatal(err)
	}
	if got != "另一套提示\n\n幽默一点" {
		t.Fatalf("selected resolution = %q", got)
	}
}
