package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/bio33/TeleShare/internal/model"
)

type sample struct {
	Name     string `json:"name" validate:"required,max=5"`
	Decision string `json:"decision" validate:"omitempty,oneof=accept reject"`
	ItemID   int64  `json:"item_id" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		input      sample
		wantErr    bool
		wantFields []string
	}{
		{sample{Name: "ok", ItemID: 1}, false, nil},
		{sample{Name: "", ItemID: 1}, true, []string{"name"}},
		{sample{Name: "toolong", ItemID: 0}, true, []string{"name", "item_id"}},
		{sample{Name: "ok", Decision: "maybe", ItemID: 1}, true, []string{"decision"}},
	}

	for _, tt := range tests {
		err := Struct(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Struct(%+v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrValidation) {
			t.Errorf("Struct(%+v) error does not wrap ErrValidation: %v", tt.input, err)
		}
		for _, f := range tt.wantFields {
			if !strings.Contains(err.Error(), f) {
				t.Errorf("Struct(%+v) error %q does not mention %q", tt.input, err, f)
			}
		}
	}
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	if got := Fields(errors.New("x")); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
