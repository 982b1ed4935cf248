// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import "os"

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("{not json"), 0600)
}
