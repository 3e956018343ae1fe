package instrumentation

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "default config",
			config: Config{
				Enabled: false,
			},
			wantErr: false,
		},
		{
			name: "with service name and version",
			config: Config{
				Enabled:        true,
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
			},
			wantErr: false,
		},
		{
			name: "enabled with sdk providers",
			config: Config{
				Enabled:        true,
				MeterProvider:  sdkmetric.NewMeterProvider(),
				TracerProvider: sdktrace.NewTracerProvider(),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				if inst == nil {
					t.Error("New() returned nil instrumentation")
					return
				}

				if inst.Meter("provider") == nil {
					t.Error("Meter('provider') returned nil")
				}
				if inst.Tracer("authz") == nil {
					t.Error("Tracer('authz') returned nil")
				}
				if inst.Metrics() == nil {
					t.Error("Metrics() returned nil")
				}
				if inst.TracerProvider() == nil {
					t.Error("TracerProvider() returned nil")
				}
				if inst.MeterProvider() == nil {
					t.Error("MeterProvider() returned nil")
				}
				if inst.Resource() == nil {
					t.Error("Resource() returned nil")
				}

				if err := inst.Shutdown(context.Background()); err != nil {
					t.Errorf("Shutdown() error = %v", err)
				}
			}
		})
	}
}

func TestNew_DefaultServiceName(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if inst.config.ServiceName != DefaultServiceName {
		t.Errorf("ServiceName = %q, want %q", inst.config.ServiceName, DefaultServiceName)
	}
	if inst.config.ServiceVersion != DefaultServiceVersion {
		t.Errorf("ServiceVersion = %q, want %q", inst.config.ServiceVersion, DefaultServiceVersion)
	}
}

func TestNewDisabled(t *testing.T) {
	inst := NewDisabled()
	if inst == nil || inst.Metrics() == nil {
		t.Fatal("NewDisabled() returned incomplete instrumentation")
	}

	// No-op recording must not panic
	inst.Metrics().RecordAuthorizationCheck(context.Background(), "is_team_member", "denied")
}

func TestNew_DisabledIgnoresProviders(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	inst, err := New(Config{
		Enabled:        false,
		TracerProvider: tp,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := inst.Tracer("authz").Start(context.Background(), "noop-span")
	span.End()

	if got := len(recorder.Ended()); got != 0 {
		t.Errorf("recorded %d spans with instrumentation disabled, want 0", got)
	}
}

func TestShutdown(t *testing.T) {
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	calls := 0
	firstErr := errors.New("first")
	inst.RegisterShutdown(func(context.Context) error {
		calls++
		return firstErr
	})
	inst.RegisterShutdown(func(context.Context) error {
		calls++
		return errors.New("second")
	})

	if err := inst.Shutdown(context.Background()); !errors.Is(err, firstErr) {
		t.Errorf("Shutdown() error = %v, want %v", err, firstErr)
	}
	if calls != 2 {
		t.Errorf("shutdown functions called %d times, want 2", calls)
	}

	// Second shutdown is a no-op
	if err := inst.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("shutdown functions called %d times after second Shutdown, want 2", calls)
	}
}
