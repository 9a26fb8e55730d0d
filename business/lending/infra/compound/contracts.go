package compound

// CometABI covers the read side of the Compound V3 Comet market:
// the utilization feeds the per-second supply rate (wad, 1e18), and
// balanceOf is the wallet's supplied base-asset balance.
const CometABI = `[
	{
		"inputs": [],
		"name": "getUtilization",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "utilization", "type": "uint256"}],
		"name": "getSupplyRate",
		"outputs": [{"internalType": "uint64", "name": "", "type": "uint64"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`
