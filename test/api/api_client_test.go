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

//nolint:revive // dot imports are the ginkgo convention
package api_test

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/unikorn-cloud/blog-api-tests/pkg/fakeapi"
	"github.com/unikorn-cloud/blog-api-tests/pkg/openapi"
	"github.com/unikorn-cloud/blog-api-tests/test/api"
)

var _ = Describe("APIClient", func() {
	var (
		ctx     context.Context
		fixture *api.ScenarioFixture
		client  *api.APIClient
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error

		fixture, err = api.NewScenarioFixture(testConfig(), api.NewWriterLogger(GinkgoWriter, nil), validator)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(fixture.Close)

		client = fixture.Client
	})

	Describe("reading users", func() {
		It("lists every user with a usable email", func() {
			users, err := client.GetUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(10))

			for _, user := range users {
				Expect(user.Email).To(ContainSubstring("@"))
			}
		})

		It("gets a single user", func() {
			user, err := client.GetUser(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Username).To(Equal("Bret"))
		})

		It("lists the posts of a user", func() {
			posts, err := client.GetUserPosts(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(10))

			for _, post := range posts {
				Expect(post.UserID).To(Equal(3))
				Expect(api.ValidatePostID(post.ID)).To(BeTrue())
			}
		})
	})

	Describe("reading posts", func() {
		It("lists every post", func() {
			posts, err := client.GetPosts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(api.MaxPostID))
		})

		It("gets a single post", func() {
			post, err := client.GetPost(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(post.ID).To(Equal(42))
			Expect(post.UserID).To(Equal(5))
		})
	})

	Describe("writing posts", func() {
		It("creates a post", func() {
			payload := api.NewPostPayload(2).Build()

			resp, post, err := client.CreatePost(ctx, payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(post.ID).To(Equal(fakeapi.NextPostID))
			Expect(post.UserID).To(Equal(2))
			Expect(post.Title).To(Equal(payload.Title))
		})

		It("replaces a post", func() {
			update := api.NewPostPayload(1).WithTitle("new title").BuildUpdate()

			resp, post, err := client.UpdatePost(ctx, 7, update)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.OK()).To(BeTrue())
			Expect(post.ID).To(Equal(7))
			Expect(post.Title).To(Equal("new title"))
		})

		It("only sends the fields that are set", func() {
			_, post, err := client.UpdatePost(ctx, 7, api.PostUpdate{Title: ptr.To("only the title")})
			Expect(err).NotTo(HaveOccurred())
			Expect(post.Title).To(Equal("only the title"))
			Expect(post.Body).To(BeEmpty())

			exchanges := fixture.Trace.Exchanges()
			Expect(exchanges).To(HaveLen(1))
			Expect(string(exchanges[0].RequestBody)).To(MatchJSON(`{"title":"only the title"}`))
		})

		It("reports the response of a failed update", func() {
			resp, _, err := client.UpdatePost(ctx, 99999, api.NewPostPayload(1).BuildUpdate())
			Expect(err).To(MatchError(api.ErrRetriesExhausted))
			Expect(resp).NotTo(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("raw requests", func() {
		It("resolves relative paths against the base URL", func() {
			resp, err := client.RawGet(ctx, "users/1")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			Expect(twin.Requests.Count(http.MethodGet, "/users/1")).To(Equal(1))
		})

		It("passes absolute URLs through", func() {
			resp, err := client.RawGet(ctx, client.BaseURL()+"/posts/1")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("returns error statuses without failing", func() {
			resp, err := client.RawGet(ctx, "/users/99999")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(resp.Body).To(MatchJSON(`{}`))

			resp, err = client.RawPut(ctx, "/posts/99999", api.NewPostPayload(1).BuildUpdate())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(resp.Text()).To(ContainSubstring("TypeError"))
		})

		It("never retries", func() {
			twin.Faults.Inject(http.MethodGet, "/posts/3", fakeapi.Fault{Count: -1})

			resp, err := client.RawGet(ctx, "/posts/3")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(twin.Requests.Count(http.MethodGet, "/posts/3")).To(Equal(1))
		})
	})

	Describe("contract validation", func() {
		It("rejects responses that do not match the contract", func() {
			twin.Faults.Inject(http.MethodGet, "/users", fakeapi.Fault{
				StatusCode: http.StatusOK,
				Body:       `[{"id": 1}]`,
				Count:      1,
			})

			_, err := client.GetUsers(ctx)
			Expect(err).To(MatchError(openapi.ErrSchemaMismatch))
		})

		It("is skipped without a validator", func() {
			unchecked, err := api.NewScenarioFixture(testConfig(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(unchecked.Close)

			twin.Faults.Inject(http.MethodGet, "/users", fakeapi.Fault{
				StatusCode: http.StatusOK,
				Body:       `[{"id": 1}]`,
				Count:      1,
			})

			users, err := unchecked.Client.GetUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
		})
	})
})

var _ = Describe("ScenarioFixture", func() {
	It("authenticates every request with the bearer token", func() {
		fixture, err := api.NewScenarioFixture(testConfig(), nil, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(fixture.Close)

		_, err = fixture.Client.GetUser(context.Background(), 2)
		Expect(err).NotTo(HaveOccurred())

		entries := twin.Requests.Entries()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Authorization).To(Equal("Bearer " + api.DefaultAuthToken))
	})

	It("can be closed more than once", func() {
		fixture, err := api.NewScenarioFixture(testConfig(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		fixture.Close()
		fixture.Close()

		Expect(fixture.Closed()).To(BeTrue())
	})
})
