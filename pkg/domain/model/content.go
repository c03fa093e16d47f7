/*
 * @Description: 内容条目领域模型
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-09-21 00:00:00
 * @LastEditors: 安知鱼
 */
package model

import "time"

// ContentItem 是站点地图生成消费的最小内容视图。
// 它由内容源（已发布文章）按日期分区分页产出，对生成管线是只读的。
type ContentItem struct {
	ID         uint
	Title      string
	Permalink  string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Images     []ContentImage
}

// ContentImage 是内容条目携带的一张图片的元数据。
// 只有 URL 是必填的，其余字段缺省时在 XML 中整体省略。
type ContentImage struct {
	URL         string
	Title       string
	Caption     string
	GeoLocation string
	License     string
}
