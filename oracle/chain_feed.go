package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const aggregatorV3ABI = `[
	{"inputs":[],"name":"latestRoundData","outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}],
	"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"_roundId","type":"uint80"}],"name":"getRoundData","outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}],
	"stateMutability":"view","type":"function"}
]`

// ChainFeed reads an AggregatorV3-style reserve feed contract over RPC.
type ChainFeed struct {
	address  common.Address
	contract *bind.BoundContract
	timeout  time.Duration
}

var _ Feed = &ChainFeed{}

func NewChainFeed(address common.Address, caller bind.ContractCaller, timeout time.Duration) (*ChainFeed, error) {
	parsed, err := abi.JSON(strings.NewReader(aggregatorV3ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator abi: %w", err)
	}
	return &ChainFeed{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, caller, nil, nil),
		timeout:  timeout,
	}, nil
}

func (f *ChainFeed) Address() common.Address {
	return f.address
}

func (f *ChainFeed) call(method string, params ...interface{}) (Reading, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	var out []interface{}
	err := f.contract.Call(&bind.CallOpts{Context: ctx, Pending: false}, &out, method, params...)
	if err != nil {
		return Reading{}, err
	}
	return parseRoundData(out)
}

func parseRoundData(out []interface{}) (Reading, error) {
	if len(out) != 5 {
		return Reading{}, fmt.Errorf("unexpected round data length %d", len(out))
	}
	roundID, ok1 := out[0].(*big.Int)
	answer, ok2 := out[1].(*big.Int)
	updatedAt, ok3 := out[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return Reading{}, errors.New("unexpected round data types")
	}
	if answer.Sign() < 0 {
		return Reading{}, fmt.Errorf("negative reserve answer %s", answer)
	}
	if updatedAt.Sign() == 0 {
		return Reading{}, ErrNoData
	}
	return Reading{
		RoundID:   roundID.Uint64(),
		Value:     answer,
		UpdatedAt: updatedAt.Uint64(),
	}, nil
}

func (f *ChainFeed) LatestRoundData() (Reading, error) {
	r, err := f.call("latestRoundData")
	if err != nil {
		log.Error("[RESERVE FEED] Error fetching latest round data from ", f.address.Hex(), ": ", err)
	}
	return r, err
}

func (f *ChainFeed) RoundID() (uint64, error) {
	r, err := f.LatestRoundData()
	if err != nil {
		return 0, err
	}
	return r.RoundID, nil
}

func (f *ChainFeed) GetRoundData(roundID uint64) (Reading, error) {
	return f.call("getRoundData", new(big.Int).SetUint64(roundID))
}
