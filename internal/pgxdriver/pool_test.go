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

package pgxdriver

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

func TestApplyPoolConfig_Defaults(t *testing.T) {
	poolCfg := &pgxpool.Config{}
	applyPoolConfig(poolCfg, Config{})

	assert.Equal(t, int32(4), poolCfg.MaxConns)
	assert.Equal(t, int32(0), poolCfg.MinConns)
	assert.Equal(t, 5*time.Minute, poolCfg.MaxConnIdleTime)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
	assert.Equal(t, 30*time.Second, poolCfg.HealthCheckPeriod)
}

func TestApplyPoolConfig_CustomValues(t *testing.T) {
	poolCfg := &pgxpool.Config{}
	applyPoolConfig(poolCfg, Config{MaxConns: 10, MinConns: 2})
	assert.Equal(t, int32(10), poolCfg.MaxConns)
	assert.Equal(t, int32(2), poolCfg.MinConns)

	applyPoolConfig(poolCfg, Config{MaxConns: 2, MinConns: 5})
	assert.Equal(t, int32(0), poolCfg.MinConns, "min above max is ignored")
}

func TestNewPool_Errors(t *testing.T) {
	tracer := observability.NewMockTracer()

	_, err := NewPool(context.Background(), Config{}, tracer)
	assert.ErrorContains(t, err, "requires a dsn")

	_, err = NewPool(context.Background(), Config{DSN: "postgres://%zz"}, tracer)
	assert.ErrorContains(t, err, "failed to parse postgres DSN")

	span := tracer.GetSpanByName("pgxdriver.new_pool")
	require.NotNil(t, span)
	assert.Equal(t, observability.StatusError, span.Status.Code)
}
