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
	"fmt"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/blog-api-tests/test/api"
)

var _ = Describe("Boundary Value Testing", func() {
	Context("When addressing posts by ID", func() {
		DescribeTable("should only find posts inside the documented range",
			func(id, status int) {
				resp, err := client.RawGet(ctx, fmt.Sprintf("/posts/%d", id))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(status))
			},
			Entry("the first post", api.MinPostID, http.StatusOK),
			Entry("the last post", api.MaxPostID, http.StatusOK),
			Entry("below the range", api.MinPostID-1, http.StatusNotFound),
			Entry("above the range", api.MaxPostID+1, http.StatusNotFound),
		)

		It("should only hand out post IDs in the range for every user", func() {
			users, err := client.GetUsers(ctx)
			Expect(err).NotTo(HaveOccurred())

			for _, user := range users {
				posts, err := client.GetUserPosts(ctx, user.ID)
				Expect(err).NotTo(HaveOccurred())

				for _, post := range posts {
					Expect(api.ValidatePostID(post.ID)).To(BeTrue(), "post %d of user %d", post.ID, user.ID)
					Expect(post.UserID).To(Equal(user.ID))
				}
			}
		})
	})

	Context("When creating posts", func() {
		It("should accept empty values", func() {
			resp, post, err := client.CreatePost(ctx, api.NewPostPayload(1).WithTitle("").WithBody("").Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(post.Title).To(BeEmpty())
			Expect(post.Body).To(BeEmpty())
		})

		It("should echo large values", func() {
			title := strings.Repeat("t", 4096)

			_, post, err := client.CreatePost(ctx, api.NewPostPayload(1).WithTitle(title).Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(post.Title).To(Equal(title))
			Expect(post.ID).To(BeNumerically(">", api.MaxPostID))
		})
	})
})
