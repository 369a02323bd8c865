package profile

import (
	"reflect"
	"testing"
)

func TestMerge_LaterStageWins(t *testing.T) {
	dst := &BusinessProfile{
		Name:     "Apex Roofing",
		Industry: "Roofing",
		Services: []string{"Repair"},
	}

	Merge(dst, &BusinessProfile{
		PricingRules: "$450-$550/square, 1.35 waste factor, $6000 minimum",
		BrandColor:   "#b91c1c",
	})

	if dst.Name != "Apex Roofing" || dst.Industry != "Roofing" {
		t.Errorf("identity fields lost: %+v", dst)
	}
	if !reflect.DeepEqual(dst.Services, []string{"Repair"}) {
		t.Errorf("services lost: %v", dst.Services)
	}
	if dst.PricingRules == "" || dst.BrandColor != "#b91c1c" {
		t.Errorf("stage-2 fields missing: %+v", dst)
	}
}

func TestMerge_ListsReplacedNotConcatenated(t *testing.T) {
	dst := &BusinessProfile{
		Services: []string{"Repair", "Inspection"},
		SuggestedQuestions: []string{
			"How big is the roof?",
		},
	}

	Merge(dst, &BusinessProfile{
		Services: []string{"Full Replacement"},
	})

	if !reflect.DeepEqual(dst.Services, []string{"Full Replacement"}) {
		t.Errorf("services = %v, want replacement", dst.Services)
	}
	// Absent list fields are left alone.
	if len(dst.SuggestedQuestions) != 1 {
		t.Errorf("suggested questions clobbered: %v", dst.SuggestedQuestions)
	}
}

func TestMerge_EmptyScalarsDoNotOverwrite(t *testing.T) {
	dst := &BusinessProfile{Name: "Apex Roofing", BrandColor: "#b91c1c"}
	Merge(dst, &BusinessProfile{Location: "Austin, TX"})

	if dst.Name != "Apex Roofing" || dst.BrandColor != "#b91c1c" {
		t.Errorf("populated fields overwritten by empty: %+v", dst)
	}
	if dst.Location != "Austin, TX" {
		t.Errorf("location = %q", dst.Location)
	}
}

func TestApprovedRecommendations(t *testing.T) {
	p := &BusinessProfile{
		Recommendations: []RecommendedService{
			{ID: "gutter-guard", Label: "Gutter Guards", IsApproved: true},
			{ID: "skylight", Label: "Skylight Install", IsApproved: false},
			{ID: "attic-insulation", Label: "Attic Insulation", IsApproved: true},
		},
	}

	approved := p.ApprovedRecommendations()
	if len(approved) != 2 {
		t.Fatalf("approved = %d, want 2", len(approved))
	}
	for _, rec := range approved {
		if !rec.IsApproved {
			t.Errorf("unapproved recommendation leaked: %+v", rec)
		}
	}

	if p.FindRecommendation("skylight") == nil {
		t.Error("FindRecommendation missed existing ID")
	}
	if p.FindRecommendation("made-up") != nil {
		t.Error("FindRecommendation invented a record")
	}
}
