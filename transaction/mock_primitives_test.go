package transaction_test

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/tree"
	"github.com/dumbnose/treedb/validate"
)

// MockPrimitives is a hand-written gomock-style stub of
// transaction.Primitives, following the same generated-mock shape
// go.uber.org/mock/mockgen produces (Controller + per-method recorder),
// written by hand since the retrieval pack didn't carry a mockgen
// invocation to model the generated output on directly.
type MockPrimitives struct {
	ctrl     *gomock.Controller
	recorder *MockPrimitivesMockRecorder
}

type MockPrimitivesMockRecorder struct {
	mock *MockPrimitives
}

func NewMockPrimitives(ctrl *gomock.Controller) *MockPrimitives {
	m := &MockPrimitives{ctrl: ctrl}
	m.recorder = &MockPrimitivesMockRecorder{m}
	return m
}

func (m *MockPrimitives) EXPECT() *MockPrimitivesMockRecorder {
	return m.recorder
}

func (m *MockPrimitives) ValidateStablePlace(view tree.Snapshot, place tree.StablePlace) (validate.Place, validate.Outcome) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ValidateStablePlace", view, place)
	return ret[0].(validate.Place), ret[1].(validate.Outcome)
}

func (mr *MockPrimitivesMockRecorder) ValidateStablePlace(view, place any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ValidateStablePlace", reflect.TypeOf((*MockPrimitives)(nil).ValidateStablePlace), view, place)
}

func (m *MockPrimitives) ValidateStableRange(view tree.Snapshot, r tree.StableRange) (validate.Range, validate.Outcome) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ValidateStableRange", view, r)
	return ret[0].(validate.Range), ret[1].(validate.Outcome)
}

func (mr *MockPrimitivesMockRecorder) ValidateStableRange(view, r any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ValidateStableRange", reflect.TypeOf((*MockPrimitives)(nil).ValidateStableRange), view, r)
}

func (m *MockPrimitives) DetachRange(view tree.Snapshot, r validate.Range) (tree.Snapshot, []ids.NodeID, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DetachRange", view, r)
	var err error
	if ret[2] != nil {
		err = ret[2].(error)
	}
	return ret[0].(tree.Snapshot), ret[1].([]ids.NodeID), err
}

func (mr *MockPrimitivesMockRecorder) DetachRange(view, r any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DetachRange", reflect.TypeOf((*MockPrimitives)(nil).DetachRange), view, r)
}

func (m *MockPrimitives) InsertIntoTrait(view tree.Snapshot, place validate.Place, newIDs []ids.NodeID) (tree.Snapshot, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertIntoTrait", view, place, newIDs)
	var err error
	if ret[1] != nil {
		err = ret[1].(error)
	}
	return ret[0].(tree.Snapshot), err
}

func (mr *MockPrimitivesMockRecorder) InsertIntoTrait(view, place, newIDs any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertIntoTrait", reflect.TypeOf((*MockPrimitives)(nil).InsertIntoTrait), view, place, newIDs)
}
