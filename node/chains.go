// Package node runs the long-lived services around the two token
// instances: mint request execution, cross-chain message relay and reserve
// monitoring.
package node

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/messenger"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/dan13ram/mtoken-bridge/oracle"
	"github.com/dan13ram/mtoken-bridge/pack"
	"github.com/dan13ram/mtoken-bridge/token"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

// SinkFactory returns the event sink for one component of one chain.
type SinkFactory func(chainID uint64, source string) events.Sink

// Dialer opens the RPC connection used to read the on-chain reserve feed.
type Dialer func(rpcURL string) (bind.ContractCaller, error)

var DialRPC Dialer = func(rpcURL string) (bind.ContractCaller, error) {
	return ethclient.Dial(rpcURL)
}

// Chain is one token instance with its messenger and, on the main chain,
// the certificate registry. All engine calls go through Do, which
// serializes them.
type Chain struct {
	mu sync.Mutex

	ID        uint64
	Token     *token.MToken
	Messenger *messenger.Messenger
	Registry  *pack.Registry
}

func (c *Chain) Do(f func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f()
}

// Receive hands an inbound message to the messenger under the chain lock.
func (c *Chain) Receive(d messenger.Delivery) error {
	return c.Do(func() error { return c.Messenger.Receive(d) })
}

type Chains struct {
	Main     *Chain
	Side     *Chain
	Router   *messenger.LocalRouter
	Fallback *oracle.FallbackReserveFeed
	Clock    governance.Clock

	Owner    common.Address
	Operator common.Address
}

func (c *Chains) ByID(chainID uint64) (*Chain, bool) {
	switch chainID {
	case c.Main.ID:
		return c.Main, true
	case c.Side.ID:
		return c.Side, true
	}
	return nil, false
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func (c *Chains) buildFeeds(cfg models.ChainConfig, sinks SinkFactory) (*oracle.Directory, common.Address, common.Address, error) {
	feeds := oracle.NewDirectory()
	reserveAddr := common.HexToAddress(cfg.ReserveFeedAddress)
	fallbackAddr := common.HexToAddress(cfg.FallbackFeedAddress)

	c.Fallback = oracle.NewFallbackReserveFeed(c.Owner, c.Clock, sinks(cfg.ChainID, "reserve"))
	seed, err := parseAmount(cfg.FallbackReserve)
	if err != nil {
		return nil, common.Address{}, common.Address{}, err
	}
	if seed.Sign() > 0 {
		if err := c.Fallback.SetReserve(c.Owner, seed); err != nil {
			return nil, common.Address{}, common.Address{}, fmt.Errorf("seed fallback reserve: %w", err)
		}
	}

	if cfg.RPCURL == "" {
		log.Info("[CHAINS] No main chain RPC, using the owner-set reserve feed at ", reserveAddr.Hex())
		feeds.Register(reserveAddr, c.Fallback)
		return feeds, reserveAddr, common.Address{}, nil
	}

	caller, err := DialRPC(cfg.RPCURL)
	if err != nil {
		return nil, common.Address{}, common.Address{}, fmt.Errorf("dial main chain rpc: %w", err)
	}
	feed, err := oracle.NewChainFeed(reserveAddr, caller, time.Duration(cfg.RPCTimeoutMillis)*time.Millisecond)
	if err != nil {
		return nil, common.Address{}, common.Address{}, err
	}
	feeds.Register(reserveAddr, feed)
	if fallbackAddr != (common.Address{}) {
		feeds.Register(fallbackAddr, c.Fallback)
	}
	log.Info("[CHAINS] Reading reserve feed ", reserveAddr.Hex(), " over rpc")
	return feeds, reserveAddr, fallbackAddr, nil
}

func (c *Chains) buildChain(cfg models.ChainConfig, engine models.EngineConfig, mainChain bool, feeds oracle.Resolver, reserveFeed, fallbackFeed common.Address, sinks SinkFactory) (*Chain, error) {
	messengerAddr := common.HexToAddress(cfg.MessengerAddress)
	tok := token.New(token.Config{
		Address:      common.HexToAddress(cfg.TokenAddress),
		Owner:        c.Owner,
		MainChain:    mainChain,
		Operator:     c.Operator,
		Revoker:      common.HexToAddress(engine.Revoker),
		Messager:     messengerAddr,
		ReserveFeed:  reserveFeed,
		FallbackFeed: fallbackFeed,
	}, c.Clock, sinks(cfg.ChainID, "token"), feeds)

	if engine.DelaySeconds > 0 {
		// the initial delay is zero, so the second request takes effect at once
		for i := 0; i < 2; i++ {
			if err := tok.SetDelay(c.Owner, engine.DelaySeconds); err != nil {
				return nil, fmt.Errorf("set delay: %w", err)
			}
		}
	}

	chain := &Chain{ID: cfg.ChainID, Token: tok}
	chain.Messenger = messenger.New(messengerAddr, c.Owner, tok, c.Router.Endpoint(cfg.ChainID, messengerAddr), sinks(cfg.ChainID, "messenger"))
	c.Router.Register(cfg.ChainID, messengerAddr, chain)
	return chain, nil
}

// NewChains builds both token instances from configuration, links their
// messengers through an in-process router and installs the registry on
// the main chain. packSigner becomes the registry's pack signer.
func NewChains(cfg models.Config, clock governance.Clock, packSigner common.Address, sinks SinkFactory) (*Chains, error) {
	if sinks == nil {
		sinks = func(uint64, string) events.Sink { return events.Discard }
	}
	feePerByte := cfg.Engine.FeePerByte
	if feePerByte == 0 {
		feePerByte = messenger.DefaultFeePerByte
	}
	c := &Chains{
		Router:   messenger.NewLocalRouter(feePerByte),
		Clock:    clock,
		Owner:    common.HexToAddress(cfg.Engine.Owner),
		Operator: common.HexToAddress(cfg.Engine.Operator),
	}

	feeds, reserveFeed, fallbackFeed, err := c.buildFeeds(cfg.MainChain, sinks)
	if err != nil {
		return nil, err
	}

	c.Main, err = c.buildChain(cfg.MainChain, cfg.Engine, true, feeds, reserveFeed, fallbackFeed, sinks)
	if err != nil {
		return nil, fmt.Errorf("main chain: %w", err)
	}
	c.Side, err = c.buildChain(cfg.SideChain, cfg.Engine, false, nil, common.Address{}, common.Address{}, sinks)
	if err != nil {
		return nil, fmt.Errorf("side chain: %w", err)
	}

	if err := c.Main.Messenger.SetAllowedPeer(c.Owner, c.Side.ID, c.Side.Messenger.Address(), true); err != nil {
		return nil, err
	}
	if err := c.Side.Messenger.SetAllowedPeer(c.Owner, c.Main.ID, c.Main.Messenger.Address(), true); err != nil {
		return nil, err
	}

	registryAddr := common.HexToAddress(cfg.MainChain.RegistryAddress)
	c.Main.Registry = pack.New(pack.Config{
		Address:    registryAddr,
		ChainID:    new(big.Int).SetUint64(c.Main.ID),
		PackSigner: packSigner,
	}, c.Main.Token, sinks(c.Main.ID, "pack"))
	if err := c.Main.Token.SetNFTContract(c.Owner, registryAddr); err != nil {
		return nil, fmt.Errorf("set nft contract: %w", err)
	}

	budget, err := parseAmount(cfg.Engine.MintBudget)
	if err != nil {
		return nil, err
	}
	if budget.Sign() > 0 {
		if err := c.Main.Token.IncreaseMintBudget(c.Operator, budget); err != nil {
			return nil, fmt.Errorf("initial mint budget: %w", err)
		}
	}

	log.Info("[CHAINS] Main chain ", c.Main.ID, " token ", c.Main.Token.Address().Hex(), ", side chain ", c.Side.ID, " token ", c.Side.Token.Address().Hex())
	return c, nil
}
