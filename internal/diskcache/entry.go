// Copyright 2024 The Synapse Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diskcache

// entry is one backing file currently held open by the cache: its region
// capability (a whole-file mapping or a bare handle, picked at build time)
// plus the used bit consulted by the clock-hand sweep.
//
// INVARIANT: used is true immediately after the entry is created and after
// every GetFileRange call that reaches it (GetFileRange sets it once
// ensureExists has returned the entry).
type entry struct {
	region backedRegion
	used   bool
}
