package smartwallet

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
)

const (
	minCallGas      = defaultCallGas / 4
	executeOverhead = 30_000
)

// callGasLimit sizes the user op's callGasLimit: the inner call as sent from the account,
// plus 10% and the account's execute() overhead.
func callGasLimit(ctx context.Context, client chains.EVMClient, sender common.Address, call Call) *big.Int {
	to := call.To
	est, err := client.EstimateGas(ctx, ethereum.CallMsg{From: sender, To: &to, Value: call.Value, Data: call.Data})
	if err != nil {
		// undeployed accounts usually fail estimation
		log.Debug("call gas estimate failed, using default", "sender", sender.Hex(), "error", err)
		return big.NewInt(defaultCallGas + executeOverhead)
	}

	est += est / 10
	if est < minCallGas {
		est = minCallGas
	}
	return new(big.Int).SetUint64(est + executeOverhead)
}

// userOpFees returns (maxFeePerGas, maxPriorityFeePerGas) for a user op: twice the next base fee plus the tip.
func userOpFees(ctx context.Context, client chains.EVMClient) (maxFee, maxPrio *big.Int, err error) {
	var base, tip *big.Int

	history, err := client.FeeHistory(ctx, 5, nil, []float64{10})
	if err == nil && history != nil && len(history.BaseFee) > 0 {
		base = history.BaseFee[len(history.BaseFee)-1]
		if n := len(history.Reward); n > 0 && len(history.Reward[n-1]) > 0 {
			if r := history.Reward[n-1][0]; r != nil && r.Sign() > 0 {
				tip = r
			}
		}
	}
	if base == nil {
		header, hErr := client.HeaderByNumber(ctx, nil)
		if hErr != nil {
			return nil, nil, errors.Wrapf(ErrNoFeeData, "latest header: %s", hErr.Error())
		}
		if header.BaseFee == nil {
			return nil, nil, errors.Wrap(ErrNoFeeData, "chain has no base fee")
		}
		base = header.BaseFee
	}
	if tip == nil {
		suggested, tErr := client.SuggestGasTipCap(ctx)
		if tErr != nil {
			return nil, nil, errors.Wrapf(ErrNoFeeData, "tip cap: %s", tErr.Error())
		}
		tip = suggested
	}

	maxFee = new(big.Int).Mul(base, big.NewInt(2))
	maxFee.Add(maxFee, tip)
	return maxFee, new(big.Int).Set(tip), nil
}
