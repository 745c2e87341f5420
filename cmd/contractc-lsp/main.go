// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"contractc/internal/lsp"
	"contractc/internal/target"
)

const lsName = "contractc"

var handler protocol.Handler

func main() {
	targetName := flag.String("target", "solana", "target chain: solana, polkadot or evm")
	configPath := flag.String("config", "", "HCL file overriding the target parameters")
	verbosity := flag.Int("v", 1, "log verbosity")
	flag.Parse()

	commonlog.Configure(*verbosity, nil)
	log := commonlog.GetLogger("contractc.lsp")

	t, err := target.Parse(*targetName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg := target.Default(t)
	if *configPath != "" {
		if cfg, err = target.LoadFile(*configPath, t); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	contractHandler := lsp.NewContractHandler(cfg)

	handler = protocol.Handler{
		Initialize:                     contractHandler.Initialize,
		Initialized:                    contractHandler.Initialized,
		Shutdown:                       contractHandler.Shutdown,
		SetTrace:                       contractHandler.SetTrace,
		TextDocumentDidOpen:            contractHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           contractHandler.TextDocumentDidClose,
		TextDocumentDidChange:          contractHandler.TextDocumentDidChange,
		TextDocumentCompletion:         contractHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: contractHandler.TextDocumentSemanticTokensFull,
	}

	// debug=false keeps glsp's own protocol tracing off
	s := server.NewServer(&handler, lsName, false)

	log.Infof("starting %s language server for %s", lsName, cfg.Target)

	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %v", err)
		os.Exit(1)
	}
}
