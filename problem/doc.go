// Copyright 2025 The Rivaas Authors
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


// Package problem renders validation and decode failures as HTTP error
// bodies.
//
// Two formats are provided: [RFC9457] Problem Details and [JSONAPI] error
// objects. Both accept any error; errors that implement [ErrorType],
// [ErrorCode] or [ErrorDetails] (as [*validation.Error] and [*codec.Error] do)
// contribute their status, code and field errors.
//
//	user, err := codec.JSON[CreateUser](body)
//	if err != nil {
//	    resp := problem.NewRFC9457("https://api.example.com/problems").Format(r.URL.Path, err)
//	    w.Header().Set("Content-Type", resp.ContentType)
//	    w.WriteHeader(resp.Status)
//	    json.NewEncoder(w).Encode(resp.Body)
//	    return
//	}
//
// The package builds response values only; writing them is left to the caller.
package problem
