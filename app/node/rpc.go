package node

import (
	"errors"
	"reflect"

	"github.com/filecoin-project/go-jsonrpc"
)

type RPCService interface{}

type RPCBuilder struct {
	namespace []string
	apiStruct []interface{}
}

func NewBuilder() *RPCBuilder {
	return &RPCBuilder{}
}

func (builder *RPCBuilder) NameSpace(nameSpaece string) *RPCBuilder {
	builder.namespace = append(builder.namespace, nameSpaece)
	return builder
}

func (builder *RPCBuilder) AddServices(services ...RPCService) error {
	for _, service := range services {
		err := builder.AddService(service)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddService collects the values returned by the service's API method.
func (builder *RPCBuilder) AddService(service RPCService) error {
	methodName := "API"

	serviceV := reflect.ValueOf(service)
	apiMethod := serviceV.MethodByName(methodName)
	if !apiMethod.IsValid() {
		return errors.New("expect API function")
	}

	for _, apiImpl := range apiMethod.Call([]reflect.Value{}) {
		if apiImpl.Kind() == reflect.Ptr || apiImpl.Kind() == reflect.Interface {
			if apiImpl.IsNil() {
				continue
			}
		}
		builder.apiStruct = append(builder.apiStruct, apiImpl.Interface())
	}
	return nil
}

func (builder *RPCBuilder) Build() *jsonrpc.RPCServer {
	server := jsonrpc.NewServer()
	for _, nameSpace := range builder.namespace {
		for _, apiStruct := range builder.apiStruct {
			server.Register(nameSpace, apiStruct)
		}
	}
	return server
}
