package app

import (
	"context"
	"fmt"

	"github.com/doeshing/k8sllm/internal/application/doctor"
	"github.com/doeshing/k8sllm/internal/application/gate"
	"github.com/doeshing/k8sllm/internal/application/interpret"
	"github.com/doeshing/k8sllm/internal/application/session"
	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/infrastructure/ai"
	"github.com/doeshing/k8sllm/internal/infrastructure/config"
	"github.com/doeshing/k8sllm/internal/infrastructure/contextstore"
	"github.com/doeshing/k8sllm/internal/infrastructure/executor"
	"github.com/doeshing/k8sllm/internal/infrastructure/kubeconfig"
	"github.com/doeshing/k8sllm/internal/infrastructure/security"
	"github.com/doeshing/k8sllm/internal/pkg/logger"
	"github.com/doeshing/k8sllm/internal/ports"
)

// Options selects the config file and log verbosity.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigErr      error
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	ContextStore   ports.ContextStore
	Interpreter    *interpret.Interpreter
	Gate           *gate.Gate
	SessionService *session.Service
	DoctorService  *doctor.Service
	Guardrail      *security.Guardrail
	Input          ports.LineReader
	KubeReader     ports.KubeContextReader
	Logger         ports.Logger

	closers []func() error
}

// BuildContainer constructs the dependency graph. A config that fails to load
// is recorded in ConfigErr and the graph is wired from the embedded defaults,
// so diagnostic commands keep working.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := logger.NewStd(opts.Verbose)
	cfgLoader := config.NewFileLoader(opts.ConfigPath)

	cfg, cfgErr := cfgLoader.Load(ctx)
	if cfgErr != nil {
		log.Warn("config load failed, wiring defaults", map[string]interface{}{
			"path":  cfgLoader.Path(),
			"error": cfgErr.Error(),
		})
		defaults, err := config.DefaultConfig()
		if err != nil {
			return nil, err
		}
		cfg = defaults
	}

	c := &Container{
		Config:         cfg,
		ConfigErr:      cfgErr,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		KubeReader:     kubeconfig.NewReader(""),
		Logger:         log,
	}

	store, err := c.buildContextStore(cfg, log)
	if err != nil {
		return nil, err
	}
	c.ContextStore = store

	guardrail, err := buildGuardrail(cfg, log)
	if err != nil {
		return nil, err
	}

	c.Guardrail = guardrail

	c.Interpreter = &interpret.Interpreter{
		ConfigProvider:  cfgLoader,
		ProviderFactory: ai.NewFactory(log),
		Logger:          log,
	}

	c.Gate = &gate.Gate{
		Binary:          cfg.GetExecutionBinary(),
		SecurityService: guardrail,
		Executor:        executor.NewKubectlExecutor(cfg.GetCommandTimeout(), log),
		Logger:          log,
	}

	c.SessionService = &session.Service{
		ContextStore: store,
		Interpreter:  c.Interpreter,
		Gate:         c.Gate,
		Logger:       log,
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider:  cfgLoader,
		SecurityService: guardrail,
		Rules:           guardrail,
		ContextStore:    store,
		KubeReader:      c.KubeReader,
	}

	return c, nil
}

// Close releases resources held by adapters.
func (c *Container) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *Container) buildContextStore(cfg domain.Config, log ports.Logger) (ports.ContextStore, error) {
	switch cfg.GetContextBackend() {
	case domain.BackendSQLite:
		path := cfg.Context.Path
		if path == "" || path == contextstore.DefaultPath() {
			path = contextstore.DefaultSQLitePath()
		}
		store, err := contextstore.NewSQLiteStore(path, log)
		if err != nil {
			return nil, fmt.Errorf("open context store: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	default:
		return contextstore.NewFileStore(cfg.Context.Path, log), nil
	}
}

func buildGuardrail(cfg domain.Config, log ports.Logger) (*security.Guardrail, error) {
	if !cfg.IsSecurityEnabled() {
		return security.Disabled(), nil
	}
	guardrail, err := security.NewGuardrail(cfg.Security.RulesFile)
	if err != nil {
		log.Warn("guardrail rules unusable, falling back to embedded rules", map[string]interface{}{
			"path":  cfg.Security.RulesFile,
			"error": err.Error(),
		})
		return security.NewGuardrail("")
	}
	return guardrail, nil
}
