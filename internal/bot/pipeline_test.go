package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jaruiz/ticket-scan-bot/internal/extraction"
)

func TestBot(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Bot Suite")
}

// fakeStager is a mock implementation of Stager
type fakeStager struct {
	path  string
	err   error
	calls int
}

func (f *fakeStager) Stage(ctx context.Context, fileID string, contentType string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

// fakeVision is a mock implementation of extraction.VisionClient that
// records every Delete call
type fakeVision struct {
	uploadErr  error
	extractErr error
	deleteErr  error
	response   string
	deleted    []string
}

func (f *fakeVision) Upload(ctx context.Context, localPath string) (*extraction.RemoteFile, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &extraction.RemoteFile{
		Name:     "files/abc123",
		URI:      "https://files.example/abc123",
		MIMEType: "image/png",
	}, nil
}

func (f *fakeVision) Extract(ctx context.Context, file *extraction.RemoteFile) (string, error) {
	if f.extractErr != nil {
		return "", f.extractErr
	}
	return f.response, nil
}

func (f *fakeVision) Delete(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}

func (f *fakeVision) Close() error { return nil }

var _ = Describe("Pipeline", func() {
	var (
		stager     *fakeStager
		vision     *fakeVision
		pipeline   *Pipeline
		stagedPath string

		reply string
		err   error
	)

	BeforeEach(func() {
		stagedPath = filepath.Join(GinkgoT().TempDir(), "ticket-test.png")
		Expect(os.WriteFile(stagedPath, []byte("fake png"), 0600)).To(Succeed())

		stager = &fakeStager{path: stagedPath}
		vision = &fakeVision{
			response: `{"restaurant_name": "Cafe Sol", "date": "12/05/2024", "total": "15.00€", "items": []}`,
		}
		pipeline = NewPipeline(stager, vision)
	})

	JustBeforeEach(func() {
		reply, err = pipeline.Process(context.Background(), "file-id", "image/jpeg")
	})

	When("every stage succeeds", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should render the receipt summary", func() {
			Expect(reply).To(ContainSubstring("📍 *Restaurante:* Cafe Sol"))
		})

		It("should delete the staged local file", func() {
			Expect(stagedPath).NotTo(BeAnExistingFile())
		})

		It("should delete the remote file exactly once", func() {
			Expect(vision.deleted).To(Equal([]string{"files/abc123"}))
		})
	})

	When("staging fails", func() {
		BeforeEach(func() {
			stager.err = &extraction.TransportError{Op: "downloading image", Err: fmt.Errorf("boom")}
		})

		It("should return a transport error", func() {
			var transportErr *extraction.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(reply).To(BeEmpty())
		})

		It("should not attempt any remote deletion", func() {
			Expect(vision.deleted).To(BeEmpty())
		})
	})

	When("the upload fails", func() {
		BeforeEach(func() {
			vision.uploadErr = &extraction.TransportError{Op: "uploading image to file store", Err: fmt.Errorf("boom")}
		})

		It("should return a transport error", func() {
			var transportErr *extraction.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
		})

		It("should still delete the staged local file", func() {
			Expect(stagedPath).NotTo(BeAnExistingFile())
		})

		It("should not attempt any remote deletion", func() {
			Expect(vision.deleted).To(BeEmpty())
		})
	})

	When("the inference call fails", func() {
		BeforeEach(func() {
			vision.extractErr = &extraction.ModelError{Err: fmt.Errorf("quota exceeded")}
		})

		It("should return a model error", func() {
			var modelErr *extraction.ModelError
			Expect(errors.As(err, &modelErr)).To(BeTrue())
			Expect(reply).To(BeEmpty())
		})

		It("should delete both artifacts exactly once", func() {
			Expect(stagedPath).NotTo(BeAnExistingFile())
			Expect(vision.deleted).To(Equal([]string{"files/abc123"}))
		})
	})

	When("the model response is not JSON", func() {
		BeforeEach(func() {
			vision.response = "not a json"
		})

		It("should not fail the request", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should fall back to the raw model text", func() {
			Expect(strings.HasPrefix(reply, fallbackPrefix)).To(BeTrue())
			Expect(reply).To(ContainSubstring("not a json"))
		})

		It("should delete both artifacts exactly once", func() {
			Expect(stagedPath).NotTo(BeAnExistingFile())
			Expect(vision.deleted).To(Equal([]string{"files/abc123"}))
		})
	})

	When("the remote deletion fails", func() {
		BeforeEach(func() {
			vision.deleteErr = &extraction.TransportError{Op: "deleting uploaded image", Err: fmt.Errorf("gone")}
		})

		It("should not mask the successful reply", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(ContainSubstring("📍 *Restaurante:* Cafe Sol"))
		})
	})
})
