package node

import (
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/metrics"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/dan13ram/mtoken-bridge/token"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	MainMintExecutorName = "main mint executor"
	SideMintExecutorName = "side mint executor"
)

// MintExecutorRunner resubmits matured mint requests on behalf of the
// operator so that they execute once the delay has passed.
type MintExecutorRunner struct {
	chain     *Chain
	tracker   *MintTracker
	operator  common.Address
	mainChain bool

	lastRunTime uint64
}

func (x *MintExecutorRunner) Run() {
	x.SyncRequests()
}

func (x *MintExecutorRunner) Status() models.RunnerStatus {
	if x.mainChain {
		return models.RunnerStatus{MainChainTime: strconv.FormatUint(x.lastRunTime, 10)}
	}
	return models.RunnerStatus{SideChainTime: strconv.FormatUint(x.lastRunTime, 10)}
}

func (x *MintExecutorRunner) FindPendingRequests() ([]models.MintRequest, error) {
	filter := bson.M{
		"chain_id":      x.chain.ID,
		"token_address": x.chain.Token.Address().Hex(),
		"status":        models.MintStatusPending,
	}
	var requests []models.MintRequest
	err := app.DB.FindMany(models.CollectionMintRequests, filter, &requests)
	return requests, err
}

func (x *MintExecutorRunner) record(outcome string) {
	metrics.RecordMintRequest(strconv.FormatUint(x.chain.ID, 10), outcome)
}

func parseRequest(doc models.MintRequest) (common.Address, *big.Int, *big.Int, bool) {
	if !common.IsHexAddress(doc.Receiver) {
		return common.Address{}, nil, nil, false
	}
	amount, ok := new(big.Int).SetString(doc.Amount, 10)
	if !ok {
		return common.Address{}, nil, nil, false
	}
	nonce, ok := new(big.Int).SetString(doc.Nonce, 10)
	if !ok {
		return common.Address{}, nil, nil, false
	}
	return common.HexToAddress(doc.Receiver), amount, nonce, true
}

// HandleRequest executes one request if it has matured. A request that is
// no longer pending on chain was revoked; one that cannot be minted for
// lack of budget stays pending and is retried on the next run.
func (x *MintExecutorRunner) HandleRequest(doc models.MintRequest) bool {
	log.Debug("[MINT EXECUTOR] Handling mint request: ", doc.RequestID)

	receiver, amount, nonce, ok := parseRequest(doc)
	if !ok {
		log.Error("[MINT EXECUTOR] Invalid mint request document: ", doc.RequestID)
		x.record("invalid")
		return x.tracker.UpdateStatus(common.HexToHash(doc.RequestID), models.MintStatusFailed, "invalid request document")
	}
	id := token.RequestID(receiver, amount, nonce)

	resourceId := models.CollectionMintRequests + "/" + doc.RequestID
	lockId, err := app.DB.XLock(resourceId)
	if err != nil {
		log.Error("[MINT EXECUTOR] Error locking mint request: ", err)
		return false
	}
	defer func() {
		if err := app.DB.Unlock(lockId); err != nil {
			log.Error("[MINT EXECUTOR] Error unlocking mint request: ", err)
		}
	}()

	var pending, matured, executed bool
	err = x.chain.Do(func() error {
		tok := x.chain.Token
		pending = tok.Requests().Pending(id)
		if !pending {
			return nil
		}
		matured = tok.Requests().Matured(id, tok.Governor().Now(), tok.Delay())
		if !matured {
			return nil
		}
		var err error
		executed, err = tok.MintTo(x.operator, receiver, amount, nonce)
		return err
	})

	if err != nil {
		var budgetErr *token.BudgetInsufficientError
		if errors.As(err, &budgetErr) {
			log.Warn("[MINT EXECUTOR] Mint request ", doc.RequestID, " waits for budget: ", err)
			x.record("budget")
			return false
		}
		log.Error("[MINT EXECUTOR] Error executing mint request ", doc.RequestID, ": ", err)
		x.record("failed")
		return x.tracker.UpdateStatus(id, models.MintStatusFailed, err.Error())
	}

	if !pending {
		log.Info("[MINT EXECUTOR] Mint request no longer pending: ", doc.RequestID)
		x.record("revoked")
		return x.tracker.UpdateStatus(id, models.MintStatusRevoked, "")
	}
	if !matured {
		log.Debug("[MINT EXECUTOR] Mint request not matured: ", doc.RequestID)
		x.record("waiting")
		return true
	}
	if !executed {
		log.Error("[MINT EXECUTOR] Mint request was not executed: ", doc.RequestID)
		return false
	}

	log.Info("[MINT EXECUTOR] Executed mint request: ", doc.RequestID)
	x.record("executed")
	return true
}

func (x *MintExecutorRunner) SyncRequests() bool {
	requests, err := x.FindPendingRequests()
	if err != nil {
		log.Error("[MINT EXECUTOR] Error fetching pending mint requests: ", err)
		return false
	}
	log.Info("[MINT EXECUTOR] Found ", len(requests), " pending mint requests")

	success := true
	for _, doc := range requests {
		success = x.HandleRequest(doc) && success
	}

	x.lastRunTime = x.chain.Token.Governor().Now()
	return success
}

func newMintExecutor(name string, chain *Chain, mainChain bool, chains *Chains, wg *sync.WaitGroup, lastHealth models.ServiceHealth) app.Service {
	if !app.Config.MintExecutor.Enabled {
		log.Debug("[MINT EXECUTOR] Mint executor disabled")
		return app.NewEmptyService(wg)
	}

	log.Debug("[MINT EXECUTOR] Initializing mint executor for chain ", chain.ID)

	x := &MintExecutorRunner{
		chain:     chain,
		tracker:   NewMintTracker(chain.ID, chain.Token.Address(), chains.Clock),
		operator:  chains.Operator,
		mainChain: mainChain,
	}

	lastRunTime := lastHealth.SideChainTime
	if mainChain {
		lastRunTime = lastHealth.MainChainTime
	}
	if ts, err := strconv.ParseUint(lastRunTime, 10, 64); err == nil {
		x.lastRunTime = ts
	}

	log.Info("[MINT EXECUTOR] Initialized mint executor for chain ", chain.ID)

	return app.NewRunnerService(name, x, wg, time.Duration(app.Config.MintExecutor.IntervalMillis)*time.Millisecond)
}

func NewMainMintExecutor(chains *Chains, wg *sync.WaitGroup, lastHealth models.ServiceHealth) app.Service {
	return newMintExecutor(MainMintExecutorName, chains.Main, true, chains, wg, lastHealth)
}

func NewSideMintExecutor(chains *Chains, wg *sync.WaitGroup, lastHealth models.ServiceHealth) app.Service {
	return newMintExecutor(SideMintExecutorName, chains.Side, false, chains, wg, lastHealth)
}
