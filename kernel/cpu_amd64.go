// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kernel

// defined in cpu_amd64.s
func halt()

// defined in cpu_amd64.s
func writeCR3(root uint64)
