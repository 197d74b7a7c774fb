package gemini_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"staffing/client/gemini"
	"staffing/common"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestGenerate(t *testing.T) {
	RegisterTestingT(t)

	var gotPath, gotKey, gotBody string
	reply := `{"candidates":[{"content":{"parts":[{"text":" Vous avez 3 jours. "}]}}]}`
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey = r.URL.Path, r.URL.Query().Get("key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	defer server.Close()

	client := gemini.NewClient("secret", "gemini-1.5-flash", server.URL+"/", time.Second)

	t.Run("should return the first candidate text", func(t *testing.T) {
		text, err := client.Generate(context.Background(), "hello")
		Expect(err).To(BeNil())
		Expect(text).To(Equal("Vous avez 3 jours."))
		Expect(gotPath).To(Equal("/models/gemini-1.5-flash:generateContent"))
		Expect(gotKey).To(Equal("secret"))
		Expect(gotBody).To(ContainSubstring(`"contents":[{"parts":[{"text":"hello"}]}]`))
	})

	t.Run("should fail on empty completions", func(t *testing.T) {
		reply = `{"candidates":[]}`
		_, err := client.Generate(context.Background(), "hello")
		Expect(errors.Is(err, gemini.ErrEmptyCompletion)).To(BeTrue())
	})

	t.Run("should fail on error status without leaking the key", func(t *testing.T) {
		status, reply = http.StatusTooManyRequests, `{"error":"quota"}`
		_, err := client.Generate(context.Background(), "hello")
		var invokeErr *common.ErrHttpInvoke
		Expect(errors.As(err, &invokeErr)).To(BeTrue())
		Expect(invokeErr.StatusCode).To(Equal(http.StatusTooManyRequests))
		Expect(err.Error()).ToNot(ContainSubstring("secret"))
	})
}
