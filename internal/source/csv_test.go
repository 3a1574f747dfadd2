package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
)

// exportRow builds an 18-column export row with the given values at the fixed offsets.
func exportRow(url, bio, user, plan, amount, date string) string {
	fields := make([]string, 18)
	for i := range fields {
		fields[i] = "x"
	}

	fields[0] = "20240101000001"
	fields[2] = url
	fields[3] = bio
	fields[4] = user
	fields[6] = plan
	fields[7] = amount
	fields[17] = date

	return strings.Join(fields, ",")
}

const exportHeader = "订单号,交易号,网页地址,留言,用户名,备注,档位,金额,a,b,c,d,e,f,g,h,i,创建时间"

func newTestCSVReader() *CSVReader {
	return NewCSVReader(config.Default().CSV, logger.Discard())
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `a,"b,c",d`, []string{"a", "b,c", "d"}},
		{"trims whitespace", " a , b ", []string{"a", "b"}},
		{"empty fields", "a,,c,", []string{"a", "", "c", ""}},
		{"doubled quotes toggle twice", `"say ""hi"", ok",z`, []string{"say hi, ok", "z"}},
		{"unterminated quote swallows rest", `a,"b,c`, []string{"a", "b,c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLine(tt.line))
		})
	}
}

func TestParseRow_QuotedFieldsBeforeColumns(t *testing.T) {
	line := `1,2,"https://afdian.com/u/abc123",note,User1,x,Tier1,"12.50",...`

	rec, err := ParseRow(SplitLine(line), config.Default().CSV.Columns, 2)
	require.NoError(t, err)
	assert.Equal(t, "abc123", rec.ID)
	assert.InDelta(t, 12.50, rec.Amount, 1e-9)
	assert.Equal(t, "User1", rec.Name)
	assert.Equal(t, "note", rec.Note)
	assert.Equal(t, "Tier1", rec.Plan)
	assert.Empty(t, rec.Timestamp, "short rows read missing columns as empty")

	// Quoted commas in earlier fields must not shift the offsets.
	shifted := `"1,000","a,b,c","https://afdian.com/u/abc123","hello, world",User1,x,Tier1,"￥12.50"`

	rec, err = ParseRow(SplitLine(shifted), config.Default().CSV.Columns, 3)
	require.NoError(t, err)
	assert.Equal(t, "abc123", rec.ID)
	assert.Equal(t, "hello, world", rec.Note)
	assert.InDelta(t, 12.50, rec.Amount, 1e-9)
}

func TestParseRow_Errors(t *testing.T) {
	cols := config.Default().CSV.Columns

	_, err := ParseRow(SplitLine(exportRow("https://afdian.com/a/creator", "", "u", "", "5", "")), cols, 2)
	require.ErrorIs(t, err, ErrNoIdentity)

	_, err = ParseRow(SplitLine(exportRow("https://afdian.com/u/abc", "", "u", "", "1.2.3", "")), cols, 3)
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"12.50", 12.5},
		{"￥30.00", 30},
		{"1,000.00", 1000},
		{"", 0},
		{"免费", 0},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.InDelta(t, tt.want, got, 1e-9, tt.raw)
	}

	_, err := ParseAmount("1.2.3")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestExtractUserID(t *testing.T) {
	assert.Equal(t, "abc123", ExtractUserID("https://afdian.com/u/abc123"))
	assert.Equal(t, "deadbeef", ExtractUserID("https://afdian.com/u/deadbeef?tab=home"))
	assert.Empty(t, ExtractUserID("https://afdian.com/a/rotatingart"))
	assert.Empty(t, ExtractUserID(""))
}

func TestCSVReader_Parse_SkipsBadRowsAndContinues(t *testing.T) {
	content := strings.Join([]string{
		exportHeader,
		exportRow("https://afdian.com/u/aaa", "thanks", "张三", "星光先锋", "18.00", "2024-03-05 10:00:00"),
		"",
		exportRow("no-url-here", "", "ghost", "", "99", "2024-03-05 10:00:00"),
		exportRow("https://afdian.com/u/bbb", "", "bad", "", "1.2.3", ""),
		exportRow("https://afdian.com/u/aaa", "", "张三", "", "5", "2024-01-01 09:00:00") + "\r",
	}, "\n")

	result := newTestCSVReader().Parse(content)

	assert.Equal(t, 6, result.Lines)
	require.Len(t, result.Contributions, 2)
	assert.Equal(t, 2, result.Contributions[0].Line)
	assert.Equal(t, 6, result.Contributions[1].Line)
	assert.Equal(t, "2024-01-01 09:00:00", result.Contributions[1].Timestamp)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 4, result.Skipped[0].Line)
	assert.ErrorIs(t, result.Skipped[0].Reason, ErrNoIdentity)
	assert.Equal(t, 5, result.Skipped[1].Line)
	assert.ErrorIs(t, result.Skipped[1].Reason, ErrInvalidAmount)
}

func TestCSVReader_Parse_HeaderOnly(t *testing.T) {
	result := newTestCSVReader().Parse(exportHeader + "\n")

	assert.Empty(t, result.Contributions)
	assert.Empty(t, result.Skipped)
}

func TestCSVReader_ReadFile_GBK(t *testing.T) {
	content := exportHeader + "\n" +
		exportRow("https://afdian.com/u/abc", "加油", "李四", "星光先锋", "20", "2024-05-01 12:00:00") + "\n"

	encoded, err := simplifiedchinese.GBK.NewEncoder().String(content)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "afdian-transaction.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0644))

	result, err := newTestCSVReader().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gbk", result.Encoding)
	assert.False(t, result.Lossy)
	require.Len(t, result.Contributions, 1)
	assert.Equal(t, "李四", result.Contributions[0].Name)
	assert.Equal(t, "加油", result.Contributions[0].Note)
}

func TestCSVReader_ReadFile_Missing(t *testing.T) {
	_, err := newTestCSVReader().ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, ErrUnreadable)
}
