// gen_vectors generates test vectors for shielded transactions.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SeismicSystems/seismic-go/config"
	"github.com/SeismicSystems/seismic-go/testing"
	"github.com/SeismicSystems/seismic-go/types"
)

var (
	// counterAddr is an arbitrary contract address.
	counterAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	// incrementBy is the calldata of incrementBy(uint256) with argument 7.
	incrementBy = common.FromHex("0x70119d06" + "0000000000000000000000000000000000000000000000000000000000000007")
	// getNumber is the calldata of getNumber().
	getNumber = common.FromHex("0xf2c9ecd8")
	// recentBlockHash is a fixed recent block hash.
	recentBlockHash = common.HexToHash("0x934b86f6a7e5a0d3e5b5f8b7c2a8c1f0a8e8d1c7b6a5f4e3d2c1b0a9f8e7d6c5")
)

func main() {
	var vectors []ShieldedTestVector

	chainID := config.DefaultNetworks.All["sanvil"].ChainID
	for _, mv := range []types.MessageVersion{types.MessageVersionPlain, types.MessageVersionTypedData} {
		for nonce := uint64(0); nonce < 3; nonce++ {
			// Shielded write.
			tx := newTx(chainID, nonce, &counterAddr, 0)
			tx.MessageVersion = mv
			tx.EncryptionNonce = [types.EncryptionNonceSize]byte{byte(nonce), byte(mv), 0x4a}
			tx.RecentBlockHash = recentBlockHash
			tx.ExpiresAtBlock = 100 + nonce
			vectors = append(vectors, MakeShieldedTestVector("write/"+mv.String(), tx, incrementBy, testing.Alice, testing.Alice.Address))

			// Signed read.
			tx = newTx(chainID, nonce, &counterAddr, 0)
			tx.MessageVersion = mv
			tx.EncryptionNonce = [types.EncryptionNonceSize]byte{byte(nonce), byte(mv), 0x52}
			tx.RecentBlockHash = recentBlockHash
			tx.ExpiresAtBlock = 100 + nonce
			tx.SignedRead = true
			vectors = append(vectors, MakeShieldedTestVector("read/"+mv.String(), tx, getNumber, testing.Bob, testing.Bob.Address))
		}

		// Contract creation with value.
		tx := newTx(chainID, 0, nil, 1000)
		tx.MessageVersion = mv
		tx.EncryptionNonce = [types.EncryptionNonceSize]byte{0xc0, byte(mv)}
		tx.RecentBlockHash = recentBlockHash
		tx.ExpiresAtBlock = 200
		vectors = append(vectors, MakeShieldedTestVector("create/"+mv.String(), tx, incrementBy, testing.Charlie, testing.Charlie.Address))

		// Input bound to a different sender.
		tx = newTx(chainID, 0, &counterAddr, 0)
		tx.MessageVersion = mv
		tx.EncryptionNonce = [types.EncryptionNonceSize]byte{0xbd, byte(mv)}
		tx.RecentBlockHash = recentBlockHash
		tx.ExpiresAtBlock = 100
		vectors = append(vectors, MakeShieldedTestVector("write/wrong-sender/"+mv.String(), tx, incrementBy, testing.Alice, testing.Bob.Address))
	}

	// Generate output.
	jsonOut, err := json.MarshalIndent(&vectors, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding test vectors: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s", jsonOut)
}
