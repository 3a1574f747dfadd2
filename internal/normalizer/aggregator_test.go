package normalizer

import (
	"strings"
	"testing"

	"ralsponsors/internal/models"
)

func contrib(id, name, note string, amount float64, ts string) models.RawContribution {
	return models.RawContribution{ID: id, Name: name, Note: note, Amount: amount, Timestamp: ts}
}

func TestAggregator_SumsAmounts(t *testing.T) {
	a := NewAggregator()
	for _, amt := range []float64{5, 10, 3} {
		a.Add(contrib("abc", "张三", "", amt, ""))
	}

	got := a.Aggregates()
	if len(got) != 1 {
		t.Fatalf("Aggregates len = %d, want 1", len(got))
	}

	if got[0].Amount != 18 {
		t.Errorf("Amount = %v, want 18", got[0].Amount)
	}

	if got[0].Count != 3 {
		t.Errorf("Count = %d, want 3", got[0].Count)
	}

	if got[0].URL != "https://afdian.com/u/abc" {
		t.Errorf("URL = %s", got[0].URL)
	}
}

func TestAggregator_PlaceholderNameReplaced(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"placeholder then real", []string{"匿名_ab12c", "张三"}, "张三"},
		{"real then placeholder", []string{"张三", "匿名_ab12c"}, "张三"},
		{"afdian default then real", []string{"爱发电用户_ab12c", "Alice"}, "Alice"},
		{"real names keep first", []string{"Alice", "Bob"}, "Alice"},
		{"empty then real", []string{"", "Bob"}, "Bob"},
		{"real then empty", []string{"Bob", ""}, "Bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator()
			for _, n := range tt.names {
				a.Add(contrib("ab12c", n, "", 1, ""))
			}

			if got := a.Aggregates()[0].Name; got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAggregator_Bio(t *testing.T) {
	a := NewAggregator()
	a.Add(contrib("x", "n", "加油", 1, ""))
	a.Add(contrib("x", "n", "好", 1, ""))
	a.Add(contrib("x", "n", "ok", 1, ""))

	if got := a.Aggregates()[0].Bio; got != "加油" {
		t.Errorf("Bio = %q, want 加油 (single-rune and equal-length notes must not replace)", got)
	}

	a.Add(contrib("x", "n", "感谢开发者😀!", 1, ""))

	if got := a.Aggregates()[0].Bio; got != "感谢开发者!" {
		t.Errorf("Bio = %q, want emoji stripped", got)
	}
}

func TestAggregator_BioTruncated(t *testing.T) {
	a := NewAggregator()
	a.Add(contrib("x", "n", strings.Repeat("长", 250), 1, ""))

	bio := a.Aggregates()[0].Bio
	if n := len([]rune(bio)); n != MaxBioRunes {
		t.Errorf("bio runes = %d, want %d", n, MaxBioRunes)
	}
}

func TestAggregator_EarliestJoinDate(t *testing.T) {
	a := NewAggregator()
	a.Add(contrib("x", "n", "", 1, "2024-05-01 10:00:00"))
	a.Add(contrib("x", "n", "", 1, "2023-11-20 08:00:00"))
	a.Add(contrib("x", "n", "", 1, "not a date"))
	a.Add(contrib("x", "n", "", 1, "2024-01-01"))

	if got := a.Aggregates()[0].JoinDate; got != "2023-11" {
		t.Errorf("JoinDate = %q, want 2023-11", got)
	}
}

func TestAggregator_NoDateStaysEmpty(t *testing.T) {
	a := NewAggregator()
	a.Add(contrib("x", "n", "", 1, ""))

	if got := a.Aggregates()[0].JoinDate; got != "" {
		t.Errorf("JoinDate = %q, want empty", got)
	}
}

func TestAggregator_FirstSeenOrderAndIdentity(t *testing.T) {
	a := NewAggregator()
	if a.Add(contrib("", "nobody", "", 1, "")) {
		t.Error("Add accepted contribution without id")
	}

	for _, id := range []string{"c", "a", "c", "b", "a"} {
		a.Add(contrib(id, id, "", 1, ""))
	}

	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}

	var ids []string
	for _, agg := range a.Aggregates() {
		ids = append(ids, agg.ID)
	}

	if strings.Join(ids, ",") != "c,a,b" {
		t.Errorf("order = %v, want c,a,b", ids)
	}
}

func TestAggregator_KeepsFirstAvatar(t *testing.T) {
	a := NewAggregator()
	a.Add(models.RawContribution{ID: "x", Amount: 1})
	a.Add(models.RawContribution{ID: "x", Amount: 1, AvatarURL: "https://a/1.jpg"})
	a.Add(models.RawContribution{ID: "x", Amount: 1, AvatarURL: "https://a/2.jpg"})

	if got := a.Aggregates()[0].AvatarURL; got != "https://a/1.jpg" {
		t.Errorf("AvatarURL = %q", got)
	}
}

func TestCleanBio(t *testing.T) {
	if got := CleanBio("a\tb\x00c🚀d"); got != "abcd" {
		t.Errorf("CleanBio = %q, want abcd", got)
	}
}

func TestIsPlaceholderName(t *testing.T) {
	for _, n := range []string{"爱发电用户_1", "匿名_1", "匿名支持者_1"} {
		if !IsPlaceholderName(n) {
			t.Errorf("IsPlaceholderName(%q) = false", n)
		}
	}

	if IsPlaceholderName("张三") {
		t.Error("IsPlaceholderName(张三) = true")
	}
}

func TestAggregator_BlankNameDoesNotStick(t *testing.T) {
	a := NewAggregator()
	a.Add(contrib("abc", "   ", "", 1, ""))
	a.Add(contrib("abc", "  Bob ", "", 1, ""))

	if got := a.Aggregates()[0].Name; got != "Bob" {
		t.Errorf("Name = %q, want %q", got, "Bob")
	}
}

func TestAggregator_LatestPlan(t *testing.T) {
	a := NewAggregator()
	for _, plan := range []string{"星光先锋", "", "极致合伙人"} {
		a.Add(models.RawContribution{ID: "abc", Plan: plan, Amount: 1})
	}

	if got := a.Aggregates()[0].Plan; got != "极致合伙人" {
		t.Errorf("Plan = %q, want %q", got, "极致合伙人")
	}
}
