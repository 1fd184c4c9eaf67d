package tournaments

import (
	"errors"
	"reflect"
	"testing"

	"github.com/codr1/Clubhouse/internal/models"
)

func countRounds(fixtures []models.Fixture) map[string]int {
	out := make(map[string]int)
	for _, f := range fixtures {
		out[f.Round]++
	}
	return out
}

func TestGenerateBracket(t *testing.T) {
	tests := []struct {
		name        string
		numTeams    int
		perGroup    int
		qualify     int
		wantGroups  []string
		wantGroupFx int
		wantSemis   int
		wantFinals  int
	}{
		{name: "two_groups_with_knockout", numTeams: 8, perGroup: 4, qualify: 2, wantGroups: []string{"A", "B"}, wantGroupFx: 12, wantSemis: 2, wantFinals: 1},
		{name: "single_group_no_knockout", numTeams: 4, perGroup: 4, qualify: 1, wantGroups: []string{"A"}, wantGroupFx: 6},
		{name: "uneven_groups_use_full_size", numTeams: 5, perGroup: 4, qualify: 2, wantGroups: []string{"A", "B"}, wantGroupFx: 12, wantSemis: 2, wantFinals: 1},
		{name: "odd_group_size", numTeams: 6, perGroup: 3, qualify: 1, wantGroups: []string{"A", "B"}, wantGroupFx: 6},
		{name: "eight_qualifiers_still_semis", numTeams: 16, perGroup: 4, qualify: 2, wantGroups: []string{"A", "B", "C", "D"}, wantGroupFx: 24, wantSemis: 2, wantFinals: 1},
		{name: "max_groups", numTeams: 16, perGroup: 2, qualify: 1, wantGroups: []string{"A", "B", "C", "D", "E", "F", "G", "H"}, wantGroupFx: 8, wantSemis: 2, wantFinals: 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bracket, err := GenerateBracket(test.numTeams, test.perGroup, test.qualify)
			if err != nil {
				t.Fatalf("GenerateBracket() error: %v", err)
			}
			if !reflect.DeepEqual(bracket.Groups, test.wantGroups) {
				t.Fatalf("groups = %v, want %v", bracket.Groups, test.wantGroups)
			}
			rounds := countRounds(bracket.Fixtures)
			if rounds[models.RoundGroupStage] != test.wantGroupFx {
				t.Fatalf("group fixtures = %d, want %d", rounds[models.RoundGroupStage], test.wantGroupFx)
			}
			if rounds[models.RoundSemiFinal] != test.wantSemis || rounds[models.RoundFinal] != test.wantFinals {
				t.Fatalf("knockout = %d semis, %d finals; want %d, %d", rounds[models.RoundSemiFinal], rounds[models.RoundFinal], test.wantSemis, test.wantFinals)
			}
		})
	}
}

func TestGenerateBracket_Placeholders(t *testing.T) {
	bracket, err := GenerateBracket(8, 4, 2)
	if err != nil {
		t.Fatalf("GenerateBracket() error: %v", err)
	}
	seen := make(map[string]bool)
	for i, f := range bracket.Fixtures {
		if f.HomeTeamID != nil || f.AwayTeamID != nil {
			t.Fatalf("fixture %s has a team assigned", f.ID)
		}
		if f.HomeTeamName != models.PlaceholderTeamName || f.AwayTeamName != models.PlaceholderTeamName {
			t.Fatalf("fixture %s names = %q v %q", f.ID, f.HomeTeamName, f.AwayTeamName)
		}
		if f.Status != models.FixtureStatusScheduled {
			t.Fatalf("fixture %s status = %q", f.ID, f.Status)
		}
		if f.MatchNumber != i+1 {
			t.Fatalf("fixture %s match number = %d, want %d", f.ID, f.MatchNumber, i+1)
		}
		if seen[f.ID] {
			t.Fatalf("duplicate fixture id %s", f.ID)
		}
		seen[f.ID] = true
	}
	if bracket.Fixtures[0].Group != "A" || bracket.Fixtures[6].Group != "B" {
		t.Fatalf("group labels out of order: %s, %s", bracket.Fixtures[0].Group, bracket.Fixtures[6].Group)
	}
}

func TestGenerateBracket_Errors(t *testing.T) {
	if _, err := GenerateBracket(18, 2, 1); !errors.Is(err, ErrTooManyGroups) {
		t.Fatalf("9 groups error = %v, want ErrTooManyGroups", err)
	}
	for _, args := range [][3]int{{0, 4, 1}, {8, 0, 1}, {8, 4, 0}, {-1, 4, 1}} {
		if _, err := GenerateBracket(args[0], args[1], args[2]); !errors.Is(err, ErrInvalidBracketConfig) {
			t.Fatalf("GenerateBracket%v error = %v, want ErrInvalidBracketConfig", args, err)
		}
	}
}

func TestBuildRoundRobinPairs_EverySlotMeetsEveryOther(t *testing.T) {
	for n := 2; n <= 7; n++ {
		pairs := buildRoundRobinPairs(n)
		if len(pairs) != n*(n-1)/2 {
			t.Fatalf("n=%d pairs = %d, want %d", n, len(pairs), n*(n-1)/2)
		}
		met := make(map[[2]int]bool)
		for _, p := range pairs {
			key := [2]int{p.Home, p.Away}
			if p.Home > p.Away {
				key = [2]int{p.Away, p.Home}
			}
			if met[key] {
				t.Fatalf("n=%d slots %v meet twice", n, key)
			}
			met[key] = true
		}
	}
}

func TestGenerateBracket_GroupFixturesCarrySlots(t *testing.T) {
	bracket, err := GenerateBracket(4, 4, 1)
	if err != nil {
		t.Fatalf("GenerateBracket() error: %v", err)
	}

	games := make(map[int]int)
	matchdays := make(map[int]map[int]bool)
	for _, f := range bracket.Fixtures {
		if f.HomeSlot < 1 || f.HomeSlot > 4 || f.AwaySlot < 1 || f.AwaySlot > 4 || f.HomeSlot == f.AwaySlot {
			t.Fatalf("fixture %s slots = %d v %d", f.ID, f.HomeSlot, f.AwaySlot)
		}
		if f.Matchday < 1 || f.Matchday > 3 {
			t.Fatalf("fixture %s matchday = %d", f.ID, f.Matchday)
		}
		if matchdays[f.Matchday] == nil {
			matchdays[f.Matchday] = make(map[int]bool)
		}
		for _, slot := range []int{f.HomeSlot, f.AwaySlot} {
			if matchdays[f.Matchday][slot] {
				t.Fatalf("slot %d plays twice on matchday %d", slot, f.Matchday)
			}
			matchdays[f.Matchday][slot] = true
			games[slot]++
		}
	}
	for slot := 1; slot <= 4; slot++ {
		if games[slot] != 3 {
			t.Fatalf("slot %d plays %d games, want 3", slot, games[slot])
		}
	}

	knockout, err := GenerateBracket(8, 4, 2)
	if err != nil {
		t.Fatalf("GenerateBracket() error: %v", err)
	}
	final := knockout.Fixtures[len(knockout.Fixtures)-1]
	if final.Round != models.RoundFinal || final.Matchday != 0 || final.HomeSlot != 0 {
		t.Fatalf("knockout fixture should carry no slots: %+v", final)
	}
}
