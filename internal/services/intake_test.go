package services

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

func TestIntakeService(t *testing.T) {
	Convey("Given the upload intake", t, func() {
		ctx := context.Background()
		repo := repositories.NewMemoryResumeRepository()
		extractor := stubExtractor{text: "Jane   Doe\n\n jane@example.com \t Go"}
		parser := &stubParser{resume: &models.Resume{
			PersonalInfo: models.PersonalInfo{Name: strPtr("Jane Doe"), Email: strPtr(" Jane@Example.com ")},
			Skills:       []string{"Go"},
		}}
		storage := &stubStorage{url: "https://cdn/resume.pdf"}
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		newIntake := func() IntakeService {
			svc := NewIntakeService(extractor, parser, storage, repo, nil, zap.NewNop()).(*intakeService)
			svc.now = func() time.Time { return fixed }
			return svc
		}
		req := IntakeRequest{FilePath: "/tmp/x.pdf", FileName: "cv.pdf", UserID: "u-1", UserEmail: "owner@x.com"}

		Convey("When every step succeeds", func() {
			got, err := newIntake().Ingest(ctx, req)

			Convey("Then the record is stored under the normalised email", func() {
				So(err, ShouldBeNil)
				So(parser.input, ShouldEqual, "Jane Doe jane@example.com Go")
				So(got.Email, ShouldEqual, "jane@example.com")
				So(got.ResumeURL, ShouldEqual, "https://cdn/resume.pdf")
				So(got.UserID, ShouldEqual, "u-1")
				So(got.UploadedAt, ShouldEqual, fixed)

				stored, err := repo.FindByEmail(ctx, "jane@example.com")
				So(err, ShouldBeNil)
				So(stored.UserEmail, ShouldEqual, "owner@x.com")
			})
		})

		Convey("When the extracted email is missing or malformed", func() {
			parser.resume.PersonalInfo.Email = strPtr("jane at example")
			_, err := newIntake().Ingest(ctx, req)

			Convey("Then it is a validation error and nothing is stored", func() {
				var intakeErr *IntakeError
				So(errors.As(err, &intakeErr), ShouldBeTrue)
				So(intakeErr.Stage, ShouldEqual, StageValidate)
				So(intakeErr.IsClientError(), ShouldBeTrue)
				So(errors.Is(err, ErrInvalidResumeEmail), ShouldBeTrue)
				So(storage.calls, ShouldEqual, 0)
				So(repo.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a collaborator fails", func() {
			cases := map[string]func(){
				StageExtract:   func() { extractor.err = errors.New("corrupt pdf") },
				StageParse:     func() { parser.err = errors.New("model unavailable") },
				StageStoreFile: func() { storage.err = errors.New("cdn down") },
			}
			for stage, breakIt := range cases {
				extractor.err, parser.err, storage.err = nil, nil, nil
				breakIt()

				_, err := newIntake().Ingest(ctx, req)

				var intakeErr *IntakeError
				So(errors.As(err, &intakeErr), ShouldBeTrue)
				So(intakeErr.Stage, ShouldEqual, stage)
				So(intakeErr.IsClientError(), ShouldBeFalse)
				So(repo.Len(), ShouldEqual, 0)
			}
		})

		Convey("When the owner is missing", func() {
			req.UserID = "  "
			_, err := newIntake().Ingest(ctx, req)

			var intakeErr *IntakeError
			So(errors.As(err, &intakeErr), ShouldBeTrue)
			So(intakeErr.Stage, ShouldEqual, StageValidate)
		})
	})
}
