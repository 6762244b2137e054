package node

import (
	"context"
	"net"
	"net/http"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/ipfs/go-datastore"
	cbor "github.com/ipfs/go-ipld-cbor"
	logging "github.com/ipfs/go-log/v2"
	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/pkg/errors"
	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opencensus.io/tag"
	"golang.org/x/sync/errgroup"

	"github.com/filecoin-project/venus-gas/app/submodule/chain"
	"github.com/filecoin-project/venus-gas/app/submodule/mpool"
	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/messagepool"
	"github.com/filecoin-project/venus-gas/pkg/metrics"
	v1api "github.com/filecoin-project/venus-gas/venus-shared/api/chain/v1"
)

var log = logging.Logger("node") // nolint: deadcode

// Node serves tipset weights and gas estimates over JSON-RPC.
type Node struct {
	cfg *config.Config

	//
	// Subsystems
	//
	chain *chain.ChainSubmodule
	mpool *mpool.MessagePoolSubmodule

	census   *metrics.CensusObserver
	exporter *prometheus.Exporter

	//
	// Jsonrpc
	//
	jsonRPCServiceV1 *jsonrpc.RPCServer
	apiAddr          net.Addr
}

// New assembles a node. Chain heads are recorded in ds, actor state is read
// from cborStore and caller executes messages for gas limit estimation.
func New(ctx context.Context, cfg *config.Config, ds datastore.Datastore, cborStore cbor.IpldStore, caller messagepool.Caller) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	node := &Node{cfg: cfg}
	var observer metrics.Observer = metrics.NoopObserver{}
	if cfg.Observability.MetricsEnabled {
		census, err := metrics.NewCensusObserver(cfg.Observability.MetricsNamespace)
		if err != nil {
			return nil, err
		}
		if err := census.Register(); err != nil {
			return nil, errors.Wrap(err, "registering metric views")
		}
		node.census = census
		observer = census

		exporter, err := prometheus.NewExporter(prometheus.Options{
			Registry: promclient.NewRegistry(),
		})
		if err != nil {
			node.unregisterMetrics()
			return nil, errors.Wrap(err, "creating prometheus exporter")
		}
		node.exporter = exporter
	}

	var err error
	node.chain, err = chain.NewChainSubmodule(ctx, cfg, ds, cborStore, observer)
	if err != nil {
		node.unregisterMetrics()
		return nil, errors.Wrap(err, "failed to build node.Chain")
	}

	node.mpool, err = mpool.NewMpoolSubmodule(cfg, node.chain, caller, observer)
	if err != nil {
		node.unregisterMetrics()
		return nil, errors.Wrap(err, "failed to build node.Mpool")
	}

	builder := NewBuilder().NameSpace("Filecoin")
	if err := builder.AddServices(node, node.chain, node.mpool); err != nil {
		node.unregisterMetrics()
		return nil, err
	}
	node.jsonRPCServiceV1 = builder.Build()

	return node, nil
}

func (node *Node) API() v1api.ICommon {
	return &commonAPI{}
}

func (node *Node) Chain() *chain.ChainSubmodule {
	return node.chain
}

func (node *Node) Mpool() *mpool.MessagePoolSubmodule {
	return node.mpool
}

// Handler returns the http handler serving the JSON-RPC api at /rpc/v1 and,
// with metrics enabled, prometheus metrics at /debug/metrics.
func (node *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/rpc/v1", node.jsonRPCServiceV1)
	if node.exporter != nil {
		mux.Handle("/debug/metrics", node.exporter)
	}
	return mux
}

// APIAddr returns the address the api listens on once RunRPCAndWait has
// signalled ready.
func (node *Node) APIAddr() net.Addr {
	return node.apiAddr
}

// RunRPCAndWait serves the api on the configured address until ctx is done.
// The `ready` channel is closed once the listener is bound.
func (node *Node) RunRPCAndWait(ctx context.Context, ready chan interface{}) error {
	defer node.Stop(context.Background())

	mAddr, err := ma.NewMultiaddr(node.cfg.API.APIAddress)
	if err != nil {
		return err
	}

	// Listen on the configured address in order to bind the port number in case it has
	// been configured as zero (i.e. OS-provided)
	apiListener, err := manet.Listen(mAddr)
	if err != nil {
		return err
	}
	netListener := manet.NetListener(apiListener)
	node.apiAddr = netListener.Addr()

	apikey, _ := tag.NewKey("api")
	apiserv := &http.Server{
		Handler: node.Handler(),
		BaseContext: func(listener net.Listener) context.Context {
			ctx, _ := tag.New(context.Background(),
				tag.Upsert(apikey, "venus-gas"))
			return ctx
		},
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := apiserv.Serve(netListener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		return apiserv.Shutdown(context.Background())
	})

	log.Infof("api listening on %s", apiListener.Multiaddr())
	close(ready)

	return eg.Wait()
}

// Stop releases the node's resources.
func (node *Node) Stop(ctx context.Context) {
	log.Infof("shutting down node...")
	node.unregisterMetrics()
}

func (node *Node) unregisterMetrics() {
	if node.census != nil {
		node.census.Unregister()
		node.census = nil
	}
	node.exporter = nil
}
