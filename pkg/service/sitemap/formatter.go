/*
 * @Description: 站点地图 XML 序列化
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"encoding/xml"
	"fmt"
)

// xmlHeader 是每份文档开头的 XML 声明。
const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Formatter 将聚合序列化为协议 XML。输出是纯函数式的：
// 条目按输入顺序输出，自由文本经 encoding/xml 转义，
// 结构固定因此不再对产物做二次解析校验。
type Formatter struct{}

// NewFormatter 创建序列化器。
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format 将一份分区文档序列化为 <urlset> XML。
// 仅当存在携带图片的条目时输出 image 扩展命名空间。
func (f *Formatter) Format(content *SitemapContent) (string, error) {
	urlset := URLSet{
		Xmlns: XmlnsSitemap,
		URLs:  make([]URL, 0, content.Len()),
	}
	if content.HasImages() {
		urlset.XmlnsImage = XmlnsImage
	}
	for _, entry := range content.Entries() {
		urlset.URLs = append(urlset.URLs, entry.ToURL())
	}

	data, err := xml.MarshalIndent(urlset, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化站点地图 %s 失败: %w", content.DateKey(), err)
	}
	return xmlHeader + string(data), nil
}

// FormatIndex 将根索引集合序列化为 <sitemapindex> XML。
func (f *Formatter) FormatIndex(collection *SitemapIndexCollection) (string, error) {
	index := SitemapIndex{
		Xmlns:    XmlnsSitemap,
		Sitemaps: make([]IndexSitemap, 0, collection.Len()),
	}
	for _, entry := range collection.Entries() {
		index.Sitemaps = append(index.Sitemaps, entry.toXML())
	}

	data, err := xml.MarshalIndent(index, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化站点地图索引失败: %w", err)
	}
	return xmlHeader + string(data), nil
}
