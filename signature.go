package konfig

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"
)

// Signature 表示某一时刻文件状态的"指纹"
//
// Exists：文件是否存在（不存在本身也是一种合法状态）
// Size：文件大小
// ModTime：文件修改时间
// Mode：文件权限与类型
// Hash：内容哈希(SHA-256)，仅在开启 Checksum 时计算
//
// 比较时还会用 os.SameFile 判断是否被替换成了另一个文件（如编辑器的原子重命名写入）
type Signature struct {
	Exists  bool
	Size    int64
	ModTime time.Time
	Mode    fs.FileMode
	Hash    string

	info fs.FileInfo
}

// Equal 判断两个签名是否代表同一文件状态
func (s Signature) Equal(other Signature) bool {
	if s.Exists != other.Exists {
		return false
	}
	if !s.Exists {
		return true
	}
	if s.Size != other.Size || !s.ModTime.Equal(other.ModTime) || s.Mode != other.Mode || s.Hash != other.Hash {
		return false
	}
	if s.info != nil && other.info != nil && !os.SameFile(s.info, other.info) {
		return false
	}
	return true
}

// ReadSignature 计算 path 当前的签名
//
// 文件不存在时返回 Exists=false 且 err=nil；
// 其它 stat 错误（如权限问题）原样返回，由调用方视为"本轮无变化"
func ReadSignature(path string, checksum bool) (Signature, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Signature{}, nil
	}
	if err != nil {
		return Signature{}, err
	}

	sig := Signature{
		Exists:  true,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
		info:    info,
	}
	if checksum && info.Mode().IsRegular() {
		h, err := hashFile(path)
		if err != nil {
			return Signature{}, err
		}
		sig.Hash = h
	}
	return sig, nil
}

// hashFile 计算文件的SHA-256哈希值
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
