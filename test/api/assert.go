/*
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

package api

import (
	"errors"
	"fmt"

	"github.com/onsi/gomega/types"
)

// ErrAssertion marks a step expectation that was not met.
var ErrAssertion = errors.New("assertion failed")

// Assert applies a Gomega matcher and turns a mismatch into an error, so a
// step can fail its own scenario without a global fail handler.
func Assert(actual any, matcher types.GomegaMatcher, description ...any) error {
	ok, err := matcher.Match(actual)
	if err != nil {
		return fmt.Errorf("%w: %s%w", ErrAssertion, describe(description), err)
	}

	if !ok {
		return fmt.Errorf("%w: %s%s", ErrAssertion, describe(description), matcher.FailureMessage(actual))
	}

	return nil
}

func describe(description []any) string {
	switch len(description) {
	case 0:
		return ""
	case 1:
		return fmt.Sprint(description[0]) + "\n"
	default:
		if format, ok := description[0].(string); ok {
			return fmt.Sprintf(format, description[1:]...) + "\n"
		}

		return fmt.Sprint(description...) + "\n"
	}
}
