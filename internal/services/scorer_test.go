package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
)

func TestParseScoreResponse(t *testing.T) {
	Convey("Given raw model output", t, func() {
		Convey("When it is a well-formed object", func() {
			got, err := parseScoreResponse(`{"score": 72.6, "matching_skills": [" Go ", "SQL", ""], "explanation": " solid backend fit "}`)

			Convey("Then the score is rounded and fields are trimmed", func() {
				So(err, ShouldBeNil)
				So(got.Score, ShouldEqual, 73)
				So(got.MatchedQualifiers, ShouldResemble, []string{"Go", "SQL"})
				So(got.Explanation, ShouldEqual, "solid backend fit")
			})
		})

		Convey("When it is wrapped in a markdown fence", func() {
			got, err := parseScoreResponse("```json\n{\"score\": 80, \"matching_skills\": [], \"explanation\": \"ok\"}\n```")

			So(err, ShouldBeNil)
			So(got.Score, ShouldEqual, 80)
			So(got.MatchedQualifiers, ShouldBeEmpty)
		})

		Convey("When the score is out of range", func() {
			high, errHigh := parseScoreResponse(`{"score": 140, "matching_skills": [], "explanation": "x"}`)
			low, errLow := parseScoreResponse(`{"score": -3, "matching_skills": [], "explanation": "x"}`)

			Convey("Then it is clamped", func() {
				So(errHigh, ShouldBeNil)
				So(errLow, ShouldBeNil)
				So(high.Score, ShouldEqual, 100)
				So(low.Score, ShouldEqual, 0)
			})
		})

		Convey("When the shape is wrong", func() {
			for _, raw := range []string{
				``,
				`not json`,
				`{"score": 70, "matching_skills": []}`,
				`{"matching_skills": [], "explanation": "x"}`,
				`{"score": 70, "explanation": "x"}`,
				`{"score": 70, "matching_skills": [], "explanation": "x", "bonus": 1}`,
				`{"score": "70", "matching_skills": [], "explanation": "x"}`,
				`{"score": 70, "matching_skills": "Go", "explanation": "x"}`,
				`{"score": 70, "matching_skills": [], "explanation": "x"} {"score": 1}`,
				`Here you go: {"score": 70, "matching_skills": [], "explanation": "x"}`,
			} {
				_, err := parseScoreResponse(raw)
				So(errors.Is(err, ErrMalformedResponse), ShouldBeTrue)
			}
		})
	})
}

func TestScoringEngine(t *testing.T) {
	Convey("Given a scoring engine over a stubbed model", t, func() {
		ctx := context.Background()
		m := metrics.New()
		resume := models.Resume{
			Email:          "jane@example.com",
			PersonalInfo:   models.PersonalInfo{Name: strPtr("Jane Doe")},
			Skills:         []string{"Go", "PostgreSQL"},
			WorkExperience: datatypes.JSON(`"5 years building APIs"`),
			ResumeURL:      "https://files/jane.pdf",
		}

		Convey("When the model answers correctly", func() {
			gemini := &stubGemini{fn: func(ctx context.Context, req JSONRequest) (string, error) {
				return `{"score": 88, "matching_skills": ["Go"], "explanation": "strong"}`, nil
			}}
			engine := NewScoringEngine(gemini, time.Second, m, zap.NewNop())

			got := engine.Score(ctx, resume, "Senior Go engineer")

			Convey("Then the result carries the candidate's identity", func() {
				So(got, ShouldResemble, models.MatchResult{
					CandidateID:       "jane@example.com",
					CandidateName:     "Jane Doe",
					ResumeURL:         "https://files/jane.pdf",
					Score:             88,
					MatchedQualifiers: []string{"Go"},
					Explanation:       "strong",
				})
				So(testutil.ToFloat64(m.ScoringCalls(metrics.OutcomeOK)), ShouldEqual, 1)
			})

			Convey("Then the prompt carries skills, experience and the description", func() {
				var prompt string
				gemini.fn = func(ctx context.Context, req JSONRequest) (string, error) {
					prompt = req.Prompt
					So(req.Schema, ShouldNotBeNil)
					return `{"score": 1, "matching_skills": [], "explanation": ""}`, nil
				}
				engine.Score(ctx, resume, "Senior Go engineer")

				So(prompt, ShouldContainSubstring, "Go, PostgreSQL")
				So(prompt, ShouldContainSubstring, "5 years building APIs")
				So(prompt, ShouldContainSubstring, "Senior Go engineer")
			})
		})

		Convey("When the model fails in any way", func() {
			cases := map[string]func(ctx context.Context, req JSONRequest) (string, error){
				ReasonService: func(ctx context.Context, req JSONRequest) (string, error) {
					return "", errors.New("503 unavailable")
				},
				ReasonMalformed: func(ctx context.Context, req JSONRequest) (string, error) {
					return `{"score": "high"}`, nil
				},
				ReasonTimeout: func(ctx context.Context, req JSONRequest) (string, error) {
					<-ctx.Done()
					return "", ctx.Err()
				},
			}

			for reason, fn := range cases {
				engine := NewScoringEngine(&stubGemini{fn: fn}, 20*time.Millisecond, m, zap.NewNop())
				got := engine.Score(ctx, resume, "jd")

				So(got.Score, ShouldEqual, 0)
				So(got.MatchedQualifiers, ShouldResemble, []string{})
				So(got.Explanation, ShouldEqual, "Unable to calculate match score")
				So(got.CandidateID, ShouldEqual, "jane@example.com")
				So(testutil.ToFloat64(m.ScoringFallbacks(reason)), ShouldEqual, 1)
			}
		})
	})
}
