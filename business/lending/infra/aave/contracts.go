package aave

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolABI covers the read side of the Aave V3 Pool used here:
// getReserveData, whose currentLiquidityRate is the annualized supply
// rate in ray (1e27).
const PoolABI = `[
	{
		"inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
		"name": "getReserveData",
		"outputs": [
			{
				"components": [
					{"components": [{"internalType": "uint256", "name": "data", "type": "uint256"}], "internalType": "struct DataTypes.ReserveConfigurationMap", "name": "configuration", "type": "tuple"},
					{"internalType": "uint128", "name": "liquidityIndex", "type": "uint128"},
					{"internalType": "uint128", "name": "currentLiquidityRate", "type": "uint128"},
					{"internalType": "uint128", "name": "variableBorrowIndex", "type": "uint128"},
					{"internalType": "uint128", "name": "currentVariableBorrowRate", "type": "uint128"},
					{"internalType": "uint128", "name": "currentStableBorrowRate", "type": "uint128"},
					{"internalType": "uint40", "name": "lastUpdateTimestamp", "type": "uint40"},
					{"internalType": "uint16", "name": "id", "type": "uint16"},
					{"internalType": "address", "name": "aTokenAddress", "type": "address"},
					{"internalType": "address", "name": "stableDebtTokenAddress", "type": "address"},
					{"internalType": "address", "name": "variableDebtTokenAddress", "type": "address"},
					{"internalType": "address", "name": "interestRateStrategyAddress", "type": "address"},
					{"internalType": "uint128", "name": "accruedToTreasury", "type": "uint128"},
					{"internalType": "uint128", "name": "unbacked", "type": "uint128"},
					{"internalType": "uint128", "name": "isolationModeTotalDebt", "type": "uint128"}
				],
				"internalType": "struct DataTypes.ReserveData",
				"name": "",
				"type": "tuple"
			}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// DataProviderABI is the registry lookup resolving an asset's receipt
// token (aToken). Returns the zero address for unlisted assets.
const DataProviderABI = `[
	{
		"inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
		"name": "getReserveTokensAddresses",
		"outputs": [
			{"internalType": "address", "name": "aTokenAddress", "type": "address"},
			{"internalType": "address", "name": "stableDebtTokenAddress", "type": "address"},
			{"internalType": "address", "name": "variableDebtTokenAddress", "type": "address"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ERC20BalanceABI reads the aToken balance of the wallet.
const ERC20BalanceABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ReserveConfigurationMap mirrors DataTypes.ReserveConfigurationMap.
type ReserveConfigurationMap struct {
	Data *big.Int
}

// ReserveData mirrors DataTypes.ReserveData as returned by
// Pool.getReserveData. The decoder is strict: a response that does not
// match this shape is an error, not something to probe around.
type ReserveData struct {
	Configuration               ReserveConfigurationMap
	LiquidityIndex              *big.Int
	CurrentLiquidityRate        *big.Int
	VariableBorrowIndex         *big.Int
	CurrentVariableBorrowRate   *big.Int
	CurrentStableBorrowRate     *big.Int
	LastUpdateTimestamp         *big.Int
	Id                          uint16
	ATokenAddress               common.Address
	StableDebtTokenAddress      common.Address
	VariableDebtTokenAddress    common.Address
	InterestRateStrategyAddress common.Address
	AccruedToTreasury           *big.Int
	Unbacked                    *big.Int
	IsolationModeTotalDebt      *big.Int
}
