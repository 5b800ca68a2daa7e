/*
 * Copyright 2026 The keyfinder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package keys_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/datastore-tools/keyfinder/internal/dialect"
	"github.com/datastore-tools/keyfinder/internal/keys"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func teradata(t *testing.T) dialect.Dialect {
	t.Helper()
	d, err := dialect.Get("teradata")
	require.NoError(t, err)
	return d
}

func vals(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func probeSQL(table keys.TableRef) string {
	from := `"` + table.Table + `"`
	if table.Schema != "" {
		from = `"` + table.Schema + `".` + from
	}
	return "SELECT * FROM " + from + " WHERE 1=2"
}

func nameRows(column string, names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{column})
	for _, n := range names {
		rows.AddRow(n)
	}
	return rows
}

// expectProbe queues the zero-row metadata probe and the identity-flag
// lookup the probe layer issues, in that order.
func expectProbe(t *testing.T, mock sqlmock.Sqlmock, table keys.TableRef, identity []string, cols ...*sqlmock.Column) {
	t.Helper()
	mock.ExpectQuery(probeSQL(table)).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(cols...)).
		RowsWillBeClosed()
	q, args := teradata(t).IdentityColumnsQuery(table.Schema, table.Table)
	mock.ExpectQuery(q).WithArgs(vals(args)...).
		WillReturnRows(nameRows("ColumnName", identity...)).
		RowsWillBeClosed()
}

func expectPrimaryKeyLookup(t *testing.T, mock sqlmock.Sqlmock, table keys.TableRef, names ...string) {
	t.Helper()
	q, args := teradata(t).PrimaryKeyQuery(table.Schema, table.Table)
	mock.ExpectQuery(q).WithArgs(vals(args)...).
		WillReturnRows(nameRows("ColumnName", names...)).
		RowsWillBeClosed()
}

func expectIdentityLookup(t *testing.T, mock sqlmock.Sqlmock, table keys.TableRef, names ...string) {
	t.Helper()
	q, args := teradata(t).IdentityColumnsQuery(table.Schema, table.Table)
	mock.ExpectQuery(q).WithArgs(vals(args)...).
		WillReturnRows(nameRows("ColumnName", names...)).
		RowsWillBeClosed()
}

func expectUniqueLookup(t *testing.T, mock sqlmock.Sqlmock, table keys.TableRef, pairs ...[2]string) {
	t.Helper()
	q, args := teradata(t).UniqueColumnsQuery(table.Schema, table.Table)
	rows := sqlmock.NewRows([]string{"IndexNumber", "ColumnName"})
	for _, p := range pairs {
		rows.AddRow(p[0], p[1])
	}
	mock.ExpectQuery(q).WithArgs(vals(args)...).
		WillReturnRows(rows).
		RowsWillBeClosed()
}

func intCol(name string) *sqlmock.Column {
	return sqlmock.NewColumn(name).OfType("INTEGER", int64(0))
}

func varcharCol(name string) *sqlmock.Column {
	return sqlmock.NewColumn(name).OfType("VARCHAR", "")
}

// expectOrdersScenario is the declared-key happy path: SALES.ORDERS with an
// auto-increment ORDER_ID primary key.
func expectOrdersScenario(t *testing.T, mock sqlmock.Sqlmock, table keys.TableRef) {
	t.Helper()
	expectPrimaryKeyLookup(t, mock, table, "ORDER_ID")
	expectProbe(t, mock, table, []string{"ORDER_ID"}, intCol("ORDER_ID"), varcharCol("CUSTOMER_NAME"))
}

func TestResolveDeclaredPrimaryKey(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Schema: "SALES", Table: "ORDERS"}
	expectOrdersScenario(t, mock, table)

	resolver := keys.NewResolver(teradata(t))
	pk, err := resolver.Resolve(context.Background(), db, table)
	require.NoError(t, err)
	require.NotNil(t, pk)
	require.Equal(t, "ORDERS", pk.Table)
	require.Equal(t, []keys.KeyColumn{
		{Name: "ORDER_ID", Type: keys.TypeInteger, Role: keys.RoleAutoGenerated},
	}, pk.Columns)

	col, ok := pk.Column("ORDER_ID")
	require.True(t, ok)
	require.Equal(t, keys.RoleAutoGenerated, col.Role)
	_, ok = pk.Column("CUSTOMER_NAME")
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveCompositeKeyPreservesOrder(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "SHIPMENTS"}
	expectPrimaryKeyLookup(t, mock, table, "REGION", "SHIPMENT_NO")
	expectProbe(t, mock, table, nil,
		intCol("SHIPMENT_NO"), varcharCol("REGION"), varcharCol("CARRIER"))

	pk, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	require.NoError(t, err)
	require.NotNil(t, pk)
	require.Equal(t, []string{"REGION", "SHIPMENT_NO"}, pk.ColumnNames())
	require.Equal(t, keys.RoleExternallySupplied, pk.Columns[0].Role)
	require.Equal(t, keys.RoleExternallySupplied, pk.Columns[1].Role)
	require.Equal(t, keys.TypeString, pk.Columns[0].Type)
	require.Equal(t, keys.TypeInteger, pk.Columns[1].Type)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveFallsBackToIdentityColumn(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "EVENTS"}
	expectPrimaryKeyLookup(t, mock, table)
	expectIdentityLookup(t, mock, table, "EVENT_ID")
	expectProbe(t, mock, table, []string{"EVENT_ID"}, intCol("EVENT_ID"), varcharCol("PAYLOAD"))

	pk, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	require.NoError(t, err)
	require.NotNil(t, pk)
	require.Equal(t, []keys.KeyColumn{
		{Name: "EVENT_ID", Type: keys.TypeInteger, Role: keys.RoleAutoGenerated},
	}, pk.Columns)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveFallsBackToHeuristicUniqueColumn(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "LOOKUP"}
	expectPrimaryKeyLookup(t, mock, table)
	expectIdentityLookup(t, mock, table)
	expectProbe(t, mock, table, nil, varcharCol("CODE"), varcharCol("LABEL"))
	expectUniqueLookup(t, mock, table, [2]string{"4", "CODE"})

	pk, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	require.NoError(t, err)
	require.NotNil(t, pk)
	require.Equal(t, []keys.KeyColumn{
		{Name: "CODE", Type: keys.TypeString, Role: keys.RoleExternallySupplied},
	}, pk.Columns)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNoKeyFound(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "SCRATCH"}
	expectPrimaryKeyLookup(t, mock, table)
	expectIdentityLookup(t, mock, table)
	expectProbe(t, mock, table, nil, varcharCol("A"), varcharCol("B"))
	expectUniqueLookup(t, mock, table)

	pk, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	require.NoError(t, err)
	require.Nil(t, pk)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Schema: "SALES", Table: "ORDERS"}
	expectOrdersScenario(t, mock, table)
	expectOrdersScenario(t, mock, table)

	resolver := keys.NewResolver(teradata(t))
	first, err := resolver.Resolve(context.Background(), db, table)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), db, table)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRequiresTableName(t *testing.T) {
	db, _ := newMockDB(t)
	_, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, keys.TableRef{Table: "  "})
	require.Error(t, err)
}

func TestResolveQueryFailurePropagates(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "BROKEN"}
	q, args := teradata(t).PrimaryKeyQuery(table.Schema, table.Table)
	mock.ExpectQuery(q).WithArgs(vals(args)...).
		WillReturnError(errors.New("connection reset"))

	pk, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	require.Nil(t, pk)
	var qerr *keys.ErrQuery
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "primary key lookup", qerr.Op)

	// One expectation, one attempt: failures are not retried.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveClassificationFailureIsFatal(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "GEO"}
	expectPrimaryKeyLookup(t, mock, table, "SHAPE_ID")
	expectProbe(t, mock, table, nil, sqlmock.NewColumn("SHAPE_ID").OfType("ST_GEOMETRY", nil))

	pk, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	require.Nil(t, pk)
	var cerr *keys.ErrClassification
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "SHAPE_ID", cerr.Column)
	require.Equal(t, "ST_GEOMETRY", cerr.TypeName)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNonexistentTableFails(t *testing.T) {
	db, mock := newMockDB(t)
	table := keys.TableRef{Table: "MISSING"}
	expectPrimaryKeyLookup(t, mock, table)
	expectIdentityLookup(t, mock, table)
	mock.ExpectQuery(probeSQL(table)).
		WillReturnError(errors.New("object 'MISSING' does not exist"))

	_, err := keys.NewResolver(teradata(t)).Resolve(context.Background(), db, table)
	var qerr *keys.ErrQuery
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "table probe", qerr.Op)

	require.NoError(t, mock.ExpectationsWereMet())
}
