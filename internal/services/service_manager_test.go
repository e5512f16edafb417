package services

import (
	"context"
	"testing"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sm := NewDefaultServiceManager(env.db, env.repo, env.logger, env.validator, env.deps())

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Classroom() before Initialize did not panic")
			}
		}()
		sm.Classroom()
	}()

	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Initialize succeeded")
	}

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if sm.Classroom() == nil || sm.Enrollment() == nil || sm.Student() == nil || sm.Auth() == nil || sm.Dashboard() == nil {
		t.Fatal("a service getter returned nil after Initialize")
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown succeeded")
	}
}

func TestServiceManager_RequiresAuthDependencies(t *testing.T) {
	env := newTestEnv(t)
	deps := env.deps()
	deps.Issuer = nil

	sm := NewDefaultServiceManager(env.db, env.repo, env.logger, env.validator, deps)
	if err := sm.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize() without token issuer succeeded")
	}
}
