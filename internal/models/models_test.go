package models_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-matcher/internal/models"
)

func TestJSONText(t *testing.T) {
	Convey("Given stored free-text fields", t, func() {
		So(models.JSONText(nil), ShouldEqual, "")
		So(models.JSONText(datatypes.JSON(`null`)), ShouldEqual, "")
		So(models.JSONText(datatypes.JSON(`"  5 years at Acme  "`)), ShouldEqual, "5 years at Acme")
		So(models.JSONText(datatypes.JSON(`["Acme 2019-2022", "Initech 2022-"]`)), ShouldEqual, "Acme 2019-2022\nInitech 2022-")
		So(models.JSONText(datatypes.JSON(`[ {"company": "Acme"} ]`)), ShouldEqual, `[{"company":"Acme"}]`)
	})
}

func TestEmailHelpers(t *testing.T) {
	Convey("Given email-shaped input", t, func() {
		So(models.NormalizeEmail("  Jane.Doe@Example.COM "), ShouldEqual, "jane.doe@example.com")
		So(models.IsValidEmail("jane@example.com"), ShouldBeTrue)
		So(models.IsValidEmail("j+tag@mail.example.io"), ShouldBeTrue)
		So(models.IsValidEmail("jane@example"), ShouldBeFalse)
		So(models.IsValidEmail("jane example.com"), ShouldBeFalse)
		So(models.IsValidEmail(""), ShouldBeFalse)
	})
}

func TestScoreHelpers(t *testing.T) {
	Convey("Given untrusted scores", t, func() {
		So(models.ClampScore(-4), ShouldEqual, 0)
		So(models.ClampScore(60), ShouldEqual, 60)
		So(models.ClampScore(140), ShouldEqual, 100)

		fallback := models.FallbackMatch("e@x.com")
		So(fallback.Score, ShouldEqual, 0)
		So(fallback.MatchedQualifiers, ShouldNotBeNil)
		So(fallback.MatchedQualifiers, ShouldBeEmpty)
		So(fallback.Explanation, ShouldEqual, "Unable to calculate match score")
	})
}

func TestJobQueryMatches(t *testing.T) {
	Convey("Given a job query snapshot", t, func() {
		job := &models.JobQuery{ID: models.CompanyKey("  Acme   Corp ")}
		So(job.ID, ShouldEqual, "acme corp")

		Convey("When matches are stored and read back", func() {
			in := []models.MatchResult{
				{CandidateID: "a@x.com", Score: 90, MatchedQualifiers: []string{"Go"}, Explanation: "strong"},
				{CandidateID: "b@x.com", Score: 60, MatchedQualifiers: []string{}, Explanation: "ok"},
			}
			So(job.SetMatches(in), ShouldBeNil)
			out, err := job.GetMatches()

			Convey("Then order and count are preserved", func() {
				So(err, ShouldBeNil)
				So(job.TotalMatches, ShouldEqual, 2)
				So(out, ShouldResemble, in)
			})
		})

		Convey("When no matches are stored", func() {
			So(job.SetMatches(nil), ShouldBeNil)
			out, err := job.GetMatches()

			Convey("Then an empty list is returned", func() {
				So(err, ShouldBeNil)
				So(string(job.Matches), ShouldEqual, "[]")
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestResumeDisplayName(t *testing.T) {
	name := " Jane Doe "
	r := models.Resume{Email: "jane@example.com", PersonalInfo: models.PersonalInfo{Name: &name}}
	if got := r.DisplayName(); got != "Jane Doe" {
		t.Fatalf("unexpected display name: %q", got)
	}
	r.PersonalInfo.Name = nil
	if got := r.DisplayName(); got != "jane@example.com" {
		t.Fatalf("unexpected fallback name: %q", got)
	}
}
