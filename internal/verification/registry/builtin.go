package registry

import (
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
)

func public(urls ...string) []domain.Endpoint {
	endpoints := make([]domain.Endpoint, len(urls))
	for i, u := range urls {
		endpoints[i] = domain.Endpoint{Name: "public", URL: u}
	}
	return endpoints
}

// Builtin returns the well-known chains with their public RPCs.
// Block times are rough averages and only bound the scan depth.
func Builtin() []domain.ChainProfile {
	return []domain.ChainProfile{
		{
			ID:               domain.ChainIDEthereum,
			Name:             "Ethereum",
			RPCEndpoints:     public("https://eth.merkle.io", "https://cloudflare-eth.com"),
			AverageBlockTime: 12 * time.Second,
			ExplorerURL:      "https://etherscan.io",
		},
		{
			ID:               domain.ChainIDOptimism,
			Name:             "OP Mainnet",
			RPCEndpoints:     public("https://mainnet.optimism.io"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://optimistic.etherscan.io",
		},
		{
			ID:               56,
			Name:             "BNB Smart Chain",
			RPCEndpoints:     public("https://56.rpc.thirdweb.com", "https://bsc-dataseed.bnbchain.org"),
			AverageBlockTime: 3 * time.Second,
			ExplorerURL:      "https://bscscan.com",
		},
		{
			ID:               100,
			Name:             "Gnosis",
			RPCEndpoints:     public("https://rpc.gnosischain.com"),
			AverageBlockTime: 5 * time.Second,
			ExplorerURL:      "https://gnosisscan.io",
		},
		{
			ID:               domain.ChainIDPolygon,
			Name:             "Polygon",
			RPCEndpoints:     public("https://polygon-rpc.com"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://polygonscan.com",
		},
		{
			ID:               324,
			Name:             "ZKsync Era",
			RPCEndpoints:     public("https://mainnet.era.zksync.io"),
			AverageBlockTime: time.Second,
			ExplorerURL:      "https://era.zksync.network",
		},
		{
			ID:               5000,
			Name:             "Mantle",
			RPCEndpoints:     public("https://rpc.mantle.xyz"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://mantlescan.xyz",
		},
		{
			ID:               domain.ChainIDBase,
			Name:             "Base",
			RPCEndpoints:     public("https://mainnet.base.org"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://basescan.org",
		},
		{
			ID:               domain.ChainIDArbitrum,
			Name:             "Arbitrum One",
			RPCEndpoints:     public("https://arb1.arbitrum.io/rpc"),
			AverageBlockTime: 250 * time.Millisecond,
			ExplorerURL:      "https://arbiscan.io",
		},
		{
			ID:               43114,
			Name:             "Avalanche",
			RPCEndpoints:     public("https://api.avax.network/ext/bc/C/rpc"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://snowtrace.io",
		},
		{
			ID:               59144,
			Name:             "Linea",
			RPCEndpoints:     public("https://rpc.linea.build"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://lineascan.build",
		},
		{
			ID:               81457,
			Name:             "Blast",
			RPCEndpoints:     public("https://rpc.blast.io"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://blastscan.io",
		},
		{
			ID:               534352,
			Name:             "Scroll",
			RPCEndpoints:     public("https://rpc.scroll.io"),
			AverageBlockTime: 3 * time.Second,
			ExplorerURL:      "https://scrollscan.com",
		},
		{
			ID:               domain.ChainIDSepolia,
			Name:             "Sepolia",
			Testnet:          true,
			RPCEndpoints:     public("https://rpc.sepolia.org", "https://ethereum-sepolia-rpc.publicnode.com"),
			AverageBlockTime: 12 * time.Second,
			ExplorerURL:      "https://sepolia.etherscan.io",
		},
		{
			ID:               84532,
			Name:             "Base Sepolia",
			Testnet:          true,
			RPCEndpoints:     public("https://sepolia.base.org"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://sepolia.basescan.org",
		},
	}
}

// Custom returns chains missing from the common chain metadata tables.
// Entries here win over Builtin for the same ID.
func Custom() []domain.ChainProfile {
	return []domain.ChainProfile{
		{
			ID:               130,
			Name:             "Unichain",
			RPCEndpoints:     public("https://mainnet.unichain.org"),
			AverageBlockTime: time.Second,
			ExplorerURL:      "https://uniscan.xyz",
		},
		{
			ID:               1868,
			Name:             "Soneium",
			RPCEndpoints:     public("https://rpc.soneium.org"),
			AverageBlockTime: 2 * time.Second,
			ExplorerURL:      "https://soneium.blockscout.com",
		},
		{
			ID:               2741,
			Name:             "Abstract",
			RPCEndpoints:     public("https://api.mainnet.abs.xyz"),
			AverageBlockTime: time.Second,
			ExplorerURL:      "https://abscan.org",
		},
		{
			ID:               10143,
			Name:             "Monad Testnet",
			Testnet:          true,
			RPCEndpoints:     public("https://testnet-rpc.monad.xyz"),
			AverageBlockTime: 500 * time.Millisecond,
			ExplorerURL:      "https://testnet.monadexplorer.com",
		},
		{
			ID:               57073,
			Name:             "Ink",
			RPCEndpoints:     public("https://rpc-gel.inkonchain.com"),
			AverageBlockTime: time.Second,
			ExplorerURL:      "https://explorer.inkonchain.com",
		},
	}
}
