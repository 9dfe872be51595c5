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
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/blog-api-tests/test/api"
)

var _ = Describe("Concurrency and Performance", func() {
	Context("When scenarios run at the same time", func() {
		It("should keep each scenario's HTTP context separate", func() {
			const scenarios = 8

			fixtures := make([]*api.ScenarioFixture, scenarios)

			for i := range fixtures {
				f, err := api.NewScenarioFixture(config, api.NewWriterLogger(GinkgoWriter, config), validator)
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(f.Close)

				fixtures[i] = f
			}

			var wg sync.WaitGroup

			errs := make([]error, scenarios)

			for i, f := range fixtures {
				wg.Add(1)

				go func() {
					defer wg.Done()
					defer GinkgoRecover()

					_, errs[i] = f.Client.GetUser(ctx, i%10+1)
				}()
			}

			wg.Wait()

			for i, f := range fixtures {
				Expect(errs[i]).NotTo(HaveOccurred())
				Expect(f.Trace.Len()).To(Equal(1))
				Expect(f.Trace.Exchanges()[0].URL).To(HaveSuffix(api.NewEndpoints().GetUser(i%10 + 1)))
			}
		})

		It("should not affect other scenarios when one is torn down", func() {
			other, err := api.NewScenarioFixture(config, api.NewWriterLogger(GinkgoWriter, config), validator)
			Expect(err).NotTo(HaveOccurred())

			other.Close()
			Expect(other.Closed()).To(BeTrue())

			users, err := client.GetUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).NotTo(BeEmpty())
		})
	})
})
