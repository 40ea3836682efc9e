package main

import (
	"fmt"
	"os"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/factory"
	"github.com/iov-one/custody/x/oracle"
	"github.com/iov-one/custody/x/safe"
	"github.com/iov-one/custody/x/signers"
	"github.com/iov-one/custody/x/utils"
	"github.com/iov-one/custody/x/verify"
	"github.com/tendermint/tendermint/libs/log"
)

// appName is used to name the state database and the logger module.
const appName = "safe"

// stack holds all extensions of the application. Query commands use it to
// read the state directly.
type stack struct {
	codec   *app.Codec
	handler custody.Handler
	auth    *safe.Authority
	cash    cash.BaseController
	oracles oracle.Bucket
	groups  signers.Bucket
}

func newStack() *stack {
	s := &stack{
		codec:   newCodec(),
		cash:    cash.NewController(cash.NewBucket()),
		oracles: oracle.NewBucket(),
		groups:  signers.NewBucket(),
	}

	registry := verify.NewRegistry()
	registry.Register(oracle.ModuleName, oracle.Loader(s.oracles))
	registry.Register(signers.ModuleName, signers.Loader(s.groups))

	router := app.NewRouter()
	s.auth = safe.NewAuthority(safe.NewBucket(), registry, s.cash, router, s.codec.Decode)
	cash.RegisterRoutes(router, s.cash)
	oracle.RegisterRoutes(router, s.oracles)
	signers.RegisterRoutes(router, s.groups)
	safe.RegisterRoutes(router, s.auth)
	factory.RegisterRoutes(router, factory.NewFactory(s.oracles, s.auth.Bucket()))

	s.handler = app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)
	return s
}

// newCodec returns a codec that knows all messages of the application.
func newCodec() *app.Codec {
	c := app.NewCodec()
	c.Register(
		&cash.SendMsg{},
		&oracle.CreateOracleMsg{},
		&oracle.InitializeMsg{},
		&signers.CreateGroupMsg{},
		&signers.AddSignerMsg{},
		&signers.RemoveSignerMsg{},
		&signers.ChangeThresholdMsg{},
		&safe.CreateSafeMsg{},
		&safe.ExecMsg{},
		&safe.ExecFromModuleMsg{},
		&safe.AddModuleMsg{},
		&safe.RemoveModuleMsg{},
		&factory.CreateSafeMsg{},
	)
	return c
}

func initializers() custody.Initializer {
	return custody.ChainInitializers{
		cash.Initializer{},
		safe.Initializer{},
	}
}

// openApp loads the application state stored in home. Returned close
// function must be called to release the database.
func openApp(home string) (*app.Application, *stack, func(), error) {
	db, err := iavl.NewCommitStore(home, appName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cannot open state: %s", err)
	}
	s := newStack()
	a, err := app.NewApplication(appName, db, s.handler, s.codec.Decode, initializers(), newLogger())
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("cannot load application: %s", err)
	}
	return a, s, db.Close, nil
}

// newLogger returns a logger writing to stderr. The verbosity is
// configured with the SAFECLI_LOG_LEVEL environment variable.
func newLogger() log.Logger {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(env("SAFECLI_LOG_LEVEL", "error"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level. %s\n", err)
		opt = log.AllowError()
	}
	return log.NewFilter(logger, opt)
}
