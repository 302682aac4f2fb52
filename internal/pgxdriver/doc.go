// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pgxdriver opens the PostgreSQL pool behind the postgres metadata
// cache. It hands out a pgxpool.Pool directly rather than a database/sql
// driver, so the cache can use native upserts and bytea values.
//
// Usage:
//
//	pool, err := pgxdriver.NewPool(ctx, pgxdriver.Config{DSN: dsn}, tracer)
//	defer pool.Close()
package pgxdriver
