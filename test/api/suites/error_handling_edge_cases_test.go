/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:testpackage,revive // dot imports are the ginkgo convention
package suites

import (
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/blog-api-tests/pkg/fakeapi"
	"github.com/unikorn-cloud/blog-api-tests/test/api"
)

var _ = Describe("Error Handling and Edge Cases", func() {
	Context("When the API is asked for things that do not exist", func() {
		Describe("Given an unknown user", func() {
			It("should return 404 with an empty object", func() {
				resp, err := client.RawGet(ctx, "/users/99999")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				Expect(resp.Body).To(MatchJSON(`{}`))
			})

			It("should return an empty post list", func() {
				resp, err := client.RawGet(ctx, "/users/99999/posts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Body).To(MatchJSON(`[]`))
			})

			It("should fail the typed client with a client status error", func() {
				_, err := client.GetUser(ctx, 99999)
				Expect(err).To(MatchError(api.ErrClientStatus))

				var statusErr *api.StatusError
				Expect(errors.As(err, &statusErr)).To(BeTrue())
				Expect(statusErr.StatusCode).To(Equal(http.StatusNotFound))
			})
		})

		Describe("Given an unknown post", func() {
			It("should answer an update with a server error message", func() {
				resp, err := client.RawPut(ctx, "/posts/99999", api.NewPostPayload(1).BuildUpdate())
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(resp.Text()).NotTo(BeEmpty())
			})
		})

		Describe("Given an unknown endpoint", func() {
			It("should return 404", func() {
				resp, err := client.RawGet(ctx, "/invalid-endpoint")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Context("When the API fails transiently", func() {
		var retrying *api.APIClient

		BeforeEach(func() {
			requireTwin()

			twin.Requests.Clear()

			wrapper := api.NewRequestWrapper(http.DefaultClient,
				api.WithMaxAttempts(3),
				api.WithRetryDelay(10*time.Millisecond),
				api.WithLogger(api.NewWriterLogger(GinkgoWriter, config)))

			retrying = api.NewAPIClient(config.BaseURL, wrapper).WithValidator(validator)
		})

		It("should recover when a retry succeeds", func() {
			twin.Faults.Inject(http.MethodGet, "/users", fakeapi.Fault{StatusCode: http.StatusServiceUnavailable, Count: 1})

			users, err := retrying.GetUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(10))
			Expect(twin.Requests.Count(http.MethodGet, "/users")).To(Equal(2))
		})

		It("should give up after the configured number of attempts", func() {
			twin.Faults.Inject(http.MethodGet, "/posts/1", fakeapi.Fault{Count: -1})

			_, err := retrying.GetPost(ctx, 1)
			Expect(err).To(MatchError(api.ErrRetriesExhausted))
			Expect(err).To(MatchError(api.ErrServerStatus))
			Expect(twin.Requests.Count(http.MethodGet, "/posts/1")).To(Equal(3))
		})

		It("should not retry client errors", func() {
			twin.Faults.Inject(http.MethodGet, "/users/1", fakeapi.Fault{StatusCode: http.StatusTooManyRequests, Count: -1})

			_, err := retrying.GetUser(ctx, 1)
			Expect(err).To(MatchError(api.ErrClientStatus))
			Expect(twin.Requests.Count(http.MethodGet, "/users/1")).To(Equal(1))
		})
	})
})
