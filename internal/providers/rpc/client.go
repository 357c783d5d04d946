package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/summit-gg/beast-indexer/internal/adapter"
	"github.com/summit-gg/beast-indexer/internal/decoder"
	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// Entry point names of the view functions the indexer calls.
const (
	entryPointGetBeast         = "get_beast"
	entryPointGetCollectableID = "get_collectable_id"
	jsonRPCVersion             = "2.0"
	methodCall                 = "starknet_call"
	beastResponseLength        = 7
	collectableResponseLength  = 1
)

// Client calls the game chain's JSON-RPC node for state the event stream
// does not carry: immutable beast metadata and entity-to-token links.
//
//go:generate mockgen -source=client.go -destination=../../mocks/rpc.go -package=mocks -mock_names=Client=MockRPCClient
type Client interface {
	// BeastMetadata fetches the immutable identity of a beast token
	BeastMetadata(ctx context.Context, tokenID uint64) (*schema.Beast, error)
	// TokenIDByEntityHash resolves the minted token id for an entity hash,
	// returning 0 when the entity has no token yet
	TokenIDByEntityHash(ctx context.Context, entityHash domain.Felt) (uint64, error)
}

type client struct {
	url    string
	http   adapter.HTTPClient
	beasts domain.Felt
	summit domain.Felt
}

// NewClient creates a JSON-RPC client against the given node URL. beasts and
// summit are the contract addresses the view calls target.
func NewClient(url string, httpClient adapter.HTTPClient, beasts, summit domain.Felt) Client {
	return &client{
		url:    url,
		http:   httpClient,
		beasts: beasts,
		summit: summit,
	}
}

type callRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	Method  string     `json:"method"`
	Params  callParams `json:"params"`
	ID      int        `json:"id"`
}

type callParams struct {
	Request functionCall `json:"request"`
	BlockID string       `json:"block_id"`
}

type functionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

type callResponse struct {
	Result []domain.Felt `json:"result"`
	Error  *rpcError     `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call performs one starknet_call against the latest state.
func (c *client) call(ctx context.Context, contract domain.Felt, entryPoint string, calldata []domain.Felt) ([]domain.Felt, error) {
	data := make([]string, 0, len(calldata))
	for _, f := range calldata {
		data = append(data, f.Hex())
	}

	reqBody, err := json.Marshal(callRequest{
		JSONRPC: jsonRPCVersion,
		Method:  methodCall,
		Params: callParams{
			Request: functionCall{
				ContractAddress:    contract.Hex(),
				EntryPointSelector: decoder.EventSelector(entryPoint).Hex(),
				Calldata:           data,
			},
			BlockID: "latest",
		},
		ID: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	respBody, err := c.http.Post(ctx, c.url, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("rpc call %s failed: %w", entryPoint, err)
	}

	var resp callResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("rpc call %s failed: %w", entryPoint, resp.Error)
	}

	return resp.Result, nil
}

// BeastMetadata fetches the immutable identity tuple of one beast. The view
// returns [beast_id, prefix, suffix, level, health, shiny, animated]; level
// and health are live values the stat events already cover and are ignored
// here.
func (c *client) BeastMetadata(ctx context.Context, tokenID uint64) (*schema.Beast, error) {
	result, err := c.call(ctx, c.beasts, entryPointGetBeast, []domain.Felt{domain.FeltFromUint64(tokenID)})
	if err != nil {
		return nil, err
	}
	if len(result) != beastResponseLength {
		return nil, fmt.Errorf("unexpected %s response length %d", entryPointGetBeast, len(result))
	}

	return &schema.Beast{
		TokenID:  tokenID,
		BeastID:  int32(result[0].Uint64()),
		Prefix:   int32(result[1].Uint64()),
		Suffix:   int32(result[2].Uint64()),
		Shiny:    result[5].Uint64() != 0,
		Animated: result[6].Uint64() != 0,
	}, nil
}

// TokenIDByEntityHash resolves the token minted for an entity. A zero result
// means the entity has no collectable token yet; that is not an error.
func (c *client) TokenIDByEntityHash(ctx context.Context, entityHash domain.Felt) (uint64, error) {
	result, err := c.call(ctx, c.summit, entryPointGetCollectableID, []domain.Felt{entityHash})
	if err != nil {
		return 0, err
	}
	if len(result) != collectableResponseLength {
		return 0, fmt.Errorf("unexpected %s response length %d", entryPointGetCollectableID, len(result))
	}

	return result[0].Uint64(), nil
}
