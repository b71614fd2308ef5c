// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package amlogic

import (
	// Make sure CPU and board drivers are registered.
	_ "periph.io/x/amlogic/odroidc2"
	_ "periph.io/x/amlogic/s905"
)
